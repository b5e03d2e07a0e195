package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// Prescription is the single uploaded prescription attached to an order.
type Prescription struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID                `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	FileURL           string                   `gorm:"column:file_url;not null"`
	Status            enums.PrescriptionStatus `gorm:"column:status;type:text;not null;index"`
	VerificationNotes *string                  `gorm:"column:verification_notes;type:text"`
	VerifiedAt        *time.Time               `gorm:"column:verified_at"`
	VerifiedBy        *uuid.UUID               `gorm:"column:verified_by;type:uuid"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Prescription) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = enums.PrescriptionStatusPending
	}
	return nil
}
