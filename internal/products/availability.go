package product

import (
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// TotalStock sums quantity over active batches; expiry is not considered.
func TotalStock(rows []models.Batch) int {
	total := 0
	for _, b := range rows {
		if b.IsActive {
			total += b.Quantity
		}
	}
	return total
}

// Availability derives the product verdict from its batches. The checks run
// in a fixed order and the first match wins.
func Availability(p models.Product, rows []models.Batch, asOf time.Time) (bool, enums.Availability) {
	if len(rows) == 0 {
		return false, enums.AvailabilityNoBatch
	}

	sellable := make([]models.Batch, 0, len(rows))
	for _, b := range rows {
		if batches.IsSellable(b, asOf) {
			sellable = append(sellable, b)
		}
	}
	if len(sellable) == 0 {
		return false, enums.AvailabilityOutOfStockNoActiveBatches
	}

	depleted := true
	for _, b := range sellable {
		if b.Quantity > 0 {
			depleted = false
			break
		}
	}
	if depleted {
		return false, enums.AvailabilityOutOfStockAllDepleted
	}

	hasStock := false
	for _, b := range sellable {
		if b.Quantity > 0 {
			hasStock = true
			break
		}
	}
	if !hasStock {
		return false, enums.AvailabilityOutOfStockNoAvailableStock
	}

	for _, b := range sellable {
		if b.Quantity <= p.LowStockThreshold {
			return true, enums.AvailabilityLowStock
		}
	}
	return true, enums.AvailabilityInStock
}

// IsLowStock is true when some stock remains but no more than the threshold.
func IsLowStock(p models.Product, rows []models.Batch) bool {
	total := TotalStock(rows)
	return total > 0 && total <= p.LowStockThreshold
}

func IsOutOfStock(rows []models.Batch) bool {
	return TotalStock(rows) == 0
}
