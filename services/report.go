package services

import (
	"fmt"
	"io"
	"strings"

	"listings-aggregator/models"
	"listings-aggregator/utils"
)

// Reporter renders aggregate results as a terminal report.
type Reporter struct {
	logger *utils.Logger
	out    io.Writer
}

func NewReporter(logger *utils.Logger, out io.Writer) *Reporter {
	return &Reporter{logger: logger, out: out}
}

func (s *Reporter) Print(r *models.Report) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(s.out, "\033[1;35m  PROPERTY LISTINGS REPORT\033[0m\n")
	fmt.Fprintf(s.out, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(s.out, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	fmt.Fprintf(s.out, "  Total listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(s.out, "  Average price  : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "\033[1;33m  %s Properties\033[0m\n", r.FilterType)
	fmt.Fprintf(s.out, "  %s\n", thin)
	if len(r.Filtered) == 0 {
		fmt.Fprintf(s.out, "  No matching listings\n")
	}
	s.printRows(r.Filtered)
	fmt.Fprintln(s.out)

	// Largest
	fmt.Fprintf(s.out, "\033[1;33m  Largest Property by Size\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	if r.Largest == nil {
		fmt.Fprintf(s.out, "  No listings\n")
	} else {
		fmt.Fprintf(s.out, "  %s (%s)\n", truncate(r.Largest.Location, 40), r.Largest.Type)
		fmt.Fprintf(s.out, "  Size  : \033[1;31m%.0f\033[0m\n", r.Largest.Size)
		fmt.Fprintf(s.out, "  Price : $%.2f\n", r.Largest.Price)
	}
	fmt.Fprintln(s.out)

	// Price ranges, always in ascending order
	fmt.Fprintf(s.out, "\033[1;33m  Listings by Price Range\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	for _, label := range models.PriceRanges {
		group := r.ByPriceRange[label]
		bar := strings.Repeat("█", len(group))
		fmt.Fprintf(s.out, "  %-16s %s (%d)\n", label, bar, len(group))
	}

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n\n", sep)
	s.logger.Debug("[report] Printed report for %d listings", r.TotalListings)
}

// PrintListings renders a plain table of properties under a heading.
func (s *Reporter) PrintListings(title string, ps []models.Property) {
	fmt.Fprintf(s.out, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(s.out, "  %s\n", strings.Repeat("─", 54))
	s.printRows(ps)
	fmt.Fprintln(s.out)
}

func (s *Reporter) printRows(ps []models.Property) {
	for i, p := range ps {
		fmt.Fprintf(s.out, "  \033[1m%d.\033[0m %-20s %-10s %12.2f %6.0f\n",
			i+1, truncate(p.Location, 20), truncate(p.Type, 10), p.Price, p.Size)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
