package models

// RawProperty holds a seed record exactly as it was typed into a seed file.
// Numbers may carry currency symbols, separators or units ("$1,200,000", "120 m²").
type RawProperty struct {
	Location string `yaml:"location"`
	Type     string `yaml:"type"`
	Price    string `yaml:"price"`
	Size     string `yaml:"size"`
}

// Property is a single listing. It carries no behaviour so it can be rendered
// or serialised by whatever consumes it.
type Property struct {
	Location string  `json:"location" yaml:"location"`
	Type     string  `json:"type" yaml:"type"`
	Price    float64 `json:"price" yaml:"price"`
	Size     float64 `json:"size" yaml:"size"`
}

// Price range labels produced by GroupByPriceRange.
const (
	RangeLow  = "0-500000"
	RangeMid  = "500001-1000000"
	RangeHigh = "1000001+"
)

// PriceRanges lists the bucket labels in ascending order.
var PriceRanges = []string{RangeLow, RangeMid, RangeHigh}

// PriceRangeOf returns the bucket label a price falls into.
// Upper bounds of the first two ranges are inclusive.
func PriceRangeOf(price float64) string {
	switch {
	case price <= 500000:
		return RangeLow
	case price <= 1000000:
		return RangeMid
	default:
		return RangeHigh
	}
}

// Report holds the results of every aggregate query over one collection.
type Report struct {
	TotalListings int
	AveragePrice  float64
	FilterType    string
	Filtered      []Property
	Largest       *Property
	ByPriceRange  map[string][]Property
}
