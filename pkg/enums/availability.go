package enums

import "fmt"

// Availability is the product-level availability verdict derived from batches.
type Availability string

const (
	AvailabilityNoBatch                    Availability = "no_batch"
	AvailabilityOutOfStockNoActiveBatches  Availability = "out_of_stock_no_active_batches"
	AvailabilityOutOfStockAllDepleted      Availability = "out_of_stock_all_depleted"
	AvailabilityOutOfStockNoAvailableStock Availability = "out_of_stock_no_available_stock"
	AvailabilityLowStock                   Availability = "low_stock"
	AvailabilityInStock                    Availability = "in_stock"
)

var validAvailabilities = []Availability{
	AvailabilityNoBatch,
	AvailabilityOutOfStockNoActiveBatches,
	AvailabilityOutOfStockAllDepleted,
	AvailabilityOutOfStockNoAvailableStock,
	AvailabilityLowStock,
	AvailabilityInStock,
}

// String implements fmt.Stringer.
func (v Availability) String() string {
	return string(v)
}

// IsValid reports whether the value is a known Availability.
func (v Availability) IsValid() bool {
	for _, candidate := range validAvailabilities {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseAvailability converts raw input into a Availability.
func ParseAvailability(value string) (Availability, error) {
	for _, candidate := range validAvailabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability %q", value)
}

var availabilityLabels = map[Availability]string{
	AvailabilityNoBatch:                    "No Batch",
	AvailabilityOutOfStockNoActiveBatches:  "Out of Stock - No Active Batches",
	AvailabilityOutOfStockAllDepleted:      "Out of Stock - All Batches Depleted",
	AvailabilityOutOfStockNoAvailableStock: "Out of Stock - No Available Stock",
	AvailabilityLowStock:                   "Low Stock",
	AvailabilityInStock:                    "In Stock",
}

// Label returns the human readable message shown in the catalog.
func (v Availability) Label() string {
	if label, ok := availabilityLabels[v]; ok {
		return label
	}
	return string(v)
}
