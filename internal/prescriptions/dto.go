package prescriptions

import (
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
)

type PrescriptionDTO struct {
	ID                uuid.UUID                `json:"id"`
	OrderID           uuid.UUID                `json:"order_id"`
	FileURL           string                   `json:"file_url"`
	Status            enums.PrescriptionStatus `json:"status"`
	VerificationNotes *string                  `json:"verification_notes,omitempty"`
	VerifiedAt        *time.Time               `json:"verified_at,omitempty"`
	VerifiedBy        *uuid.UUID               `json:"verified_by,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// QueueItemDTO adds the order context staff need while reviewing.
type QueueItemDTO struct {
	PrescriptionDTO
	CustomerID  uuid.UUID         `json:"customer_id"`
	OrderStatus enums.OrderStatus `json:"order_status"`
}

func NewPrescriptionDTO(p models.Prescription) PrescriptionDTO {
	return PrescriptionDTO{
		ID:                p.ID,
		OrderID:           p.OrderID,
		FileURL:           p.FileURL,
		Status:            p.Status,
		VerificationNotes: p.VerificationNotes,
		VerifiedAt:        p.VerifiedAt,
		VerifiedBy:        p.VerifiedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func newQueueItemDTOs(rows []Row) []QueueItemDTO {
	out := make([]QueueItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newQueueItemDTO(row))
	}
	return out
}

func newQueueItemDTO(row Row) QueueItemDTO {
	return QueueItemDTO{
		PrescriptionDTO: NewPrescriptionDTO(row.Prescription),
		CustomerID:      row.CustomerID,
		OrderStatus:     row.OrderStatus,
	}
}
