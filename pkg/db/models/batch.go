package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Batch is one received lot of a product. Expiration and received dates are
// calendar days stored as UTC midnight.
type Batch struct {
	ID             uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID   `gorm:"column:product_id;type:uuid;not null;index"`
	Code           string      `gorm:"column:batch_code;not null;uniqueIndex"`
	Quantity       int         `gorm:"column:quantity;not null;check:quantity >= 0"`
	ExpirationDate time.Time   `gorm:"column:expiration_date;type:date;not null;index"`
	ReceivedDate   time.Time   `gorm:"column:received_date;type:date;not null"`
	IsActive       bool        `gorm:"column:is_active;not null"`
	OrderItems     []OrderItem `gorm:"foreignKey:BatchID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
