package enums

import "fmt"

// StockStatus classifies a single batch by remaining quantity.
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusInStock    StockStatus = "in_stock"
)

var validStockStatuses = []StockStatus{
	StockStatusOutOfStock,
	StockStatusLowStock,
	StockStatusInStock,
}

// String implements fmt.Stringer.
func (v StockStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known StockStatus.
func (v StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}
