package product

import (
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog payload with stock fields derived from batches.
type ProductDTO struct {
	ID                   uuid.UUID             `json:"id"`
	Name                 string                `json:"product_name"`
	Brand                string                `json:"brand_name"`
	Category             enums.ProductCategory `json:"category"`
	Price                decimal.Decimal       `json:"price"`
	Description          string                `json:"description"`
	ImageURL             *string               `json:"image_url,omitempty"`
	RequiresPrescription bool                  `json:"requires_prescription"`
	LowStockThreshold    int                   `json:"low_stock_threshold"`
	IsActive             bool                  `json:"is_active"`
	TotalStock           int                   `json:"total_stock"`
	IsAvailable          bool                  `json:"is_available"`
	Availability         enums.Availability    `json:"availability"`
	AvailabilityLabel    string                `json:"availability_label"`
	IsLowStock           bool                  `json:"is_low_stock"`
	IsOutOfStock         bool                  `json:"is_out_of_stock"`
	ActiveBatches        []batches.BatchDTO    `json:"active_batches"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// NewProductDTO evaluates the aggregate stock fields as of asOf.
func NewProductDTO(p models.Product, rows []models.Batch, asOf time.Time) ProductDTO {
	available, verdict := Availability(p, rows, asOf)
	return ProductDTO{
		ID:                   p.ID,
		Name:                 p.Name,
		Brand:                p.Brand,
		Category:             p.Category,
		Price:                p.Price,
		Description:          p.Description,
		ImageURL:             p.ImageURL,
		RequiresPrescription: p.RequiresPrescription,
		LowStockThreshold:    p.LowStockThreshold,
		IsActive:             p.IsActive,
		TotalStock:           TotalStock(rows),
		IsAvailable:          available,
		Availability:         verdict,
		AvailabilityLabel:    verdict.Label(),
		IsLowStock:           IsLowStock(p, rows),
		IsOutOfStock:         IsOutOfStock(rows),
		ActiveBatches:        batches.NewBatchDTOs(batches.Allocatable(rows, asOf), p.LowStockThreshold, asOf),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// ListResult is one page of the catalog.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CategoryDTO pairs an enum value with its display label.
type CategoryDTO struct {
	Value enums.ProductCategory `json:"value"`
	Label string                `json:"label"`
}

func categoryLabel(c enums.ProductCategory) string {
	s := c.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
