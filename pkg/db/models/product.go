package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// Product is a catalog entry; stock lives on its batches.
type Product struct {
	ID                   uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name                 string                `gorm:"column:name;not null;index"`
	Brand                string                `gorm:"column:brand;not null"`
	Category             enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Price                decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	Description          string                `gorm:"column:description;type:text;not null"`
	ImageURL             *string               `gorm:"column:image_url"`
	RequiresPrescription bool                  `gorm:"column:requires_prescription;not null"`
	LowStockThreshold    int                   `gorm:"column:low_stock_threshold;not null"`
	IsActive             bool                  `gorm:"column:is_active;not null"`
	Batches              []Batch               `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
