package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"listings-aggregator/models"
	"listings-aggregator/utils"
)

var (
	// numberRegexp captures the first numeric value, separators already stripped
	numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// suffixRegexp captures price shorthand such as "1.2m" or "750k"
	suffixRegexp = regexp.MustCompile(`^(\d+(?:\.\d+)?)([km])$`)
)

// Cleaner turns RawProperty seed records into Properties.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean converts raw records in order. Empty entries are skipped; a number
// that cannot be read becomes 0 and is reported as a warning.
func (c *Cleaner) Clean(raw []*models.RawProperty) []models.Property {
	result := make([]models.Property, 0, len(raw))

	for i, r := range raw {
		if r == nil {
			c.logger.Warn("[cleaner] Skipping empty seed record at position %d", i)
			continue
		}

		price, ok := c.parsePrice(r.Price)
		if !ok {
			c.logger.Warn("[cleaner] Unreadable price %q for %s", r.Price, r.Location)
		}
		size, ok := c.parseSize(r.Size)
		if !ok {
			c.logger.Warn("[cleaner] Unreadable size %q for %s", r.Size, r.Location)
		}

		result = append(result, models.Property{
			Location: normaliseText(r.Location),
			Type:     normaliseText(r.Type),
			Price:    price,
			Size:     size,
		})
	}

	c.logger.Debug("[cleaner] Cleaned %d seed records", len(result))
	return result
}

// parsePrice extracts a price, honouring k/M shorthand.
// Examples:
//
//	"$1,200,000" → 1200000
//	"750k"       → 750000
//	"1.2M"       → 1200000
func (c *Cleaner) parsePrice(raw string) (float64, bool) {
	cleaned := stripNumber(raw)
	if m := suffixRegexp.FindStringSubmatch(cleaned); len(m) == 3 {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		if m[2] == "k" {
			return n * 1e3, true
		}
		return n * 1e6, true
	}
	return firstNumber(cleaned)
}

// parseSize extracts an area. Unit suffixes are ignored, so "120m" and
// "120 m²" both read as 120.
func (c *Cleaner) parseSize(raw string) (float64, bool) {
	return firstNumber(stripNumber(raw))
}

// stripNumber lower-cases raw, drops separators and any leading currency or label.
func stripNumber(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "_", "")
	return strings.TrimLeftFunc(cleaned, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
}

func firstNumber(cleaned string) (float64, bool) {
	match := numberRegexp.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
