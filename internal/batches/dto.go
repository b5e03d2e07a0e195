package batches

import (
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
)

// BatchDTO is the batch payload returned to clients, with derived stock fields.
type BatchDTO struct {
	ID              uuid.UUID         `json:"id"`
	ProductID       uuid.UUID         `json:"product_id"`
	Code            string            `json:"batch_code"`
	Quantity        int               `json:"quantity"`
	ExpirationDate  string            `json:"expiration_date"`
	ReceivedDate    string            `json:"received_date"`
	IsActive        bool              `json:"is_active"`
	StockStatus     enums.StockStatus `json:"stock_status"`
	IsExpired       bool              `json:"is_expired"`
	DaysUntilExpiry int               `json:"days_until_expiry"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewBatchDTO derives the stock fields against threshold and asOf.
func NewBatchDTO(b models.Batch, threshold int, asOf time.Time) BatchDTO {
	return BatchDTO{
		ID:              b.ID,
		ProductID:       b.ProductID,
		Code:            b.Code,
		Quantity:        b.Quantity,
		ExpirationDate:  b.ExpirationDate.Format(dateLayout),
		ReceivedDate:    b.ReceivedDate.Format(dateLayout),
		IsActive:        b.IsActive,
		StockStatus:     StockStatus(b, threshold),
		IsExpired:       IsExpired(b, asOf),
		DaysUntilExpiry: DaysUntilExpiry(b, asOf),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// NewBatchDTOs maps a slice, keeping order.
func NewBatchDTOs(rows []models.Batch, threshold int, asOf time.Time) []BatchDTO {
	out := make([]BatchDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewBatchDTO(row, threshold, asOf))
	}
	return out
}
