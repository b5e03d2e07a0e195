package orders

import (
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/prescriptions"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemDTO is one line with the product and batch it was allocated from.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	BrandName   string          `json:"brand_name,omitempty"`
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchCode   string          `json:"batch_code,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderDTO struct {
	ID              uuid.UUID                      `json:"id"`
	CustomerID      uuid.UUID                      `json:"customer_id"`
	Customer        *users.CustomerSummary         `json:"customer,omitempty"`
	Status          enums.OrderStatus              `json:"status"`
	PickupAt        time.Time                      `json:"pickup_at"`
	PaymentMethod   enums.PaymentMethod            `json:"payment_method"`
	DeliveryMethod  enums.DeliveryMethod           `json:"delivery_method"`
	PaymentProofURL *string                        `json:"payment_proof_url,omitempty"`
	Notes           *string                        `json:"notes,omitempty"`
	TotalAmount     decimal.Decimal                `json:"total_amount"`
	Items           []OrderItemDTO                 `json:"items"`
	Prescription    *prescriptions.PrescriptionDTO `json:"prescription,omitempty"`
	CreatedAt       time.Time                      `json:"created_at"`
	UpdatedAt       time.Time                      `json:"updated_at"`
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// lookups carries the rows referenced by a set of orders.
type lookups struct {
	customers map[uuid.UUID]models.User
	products  map[uuid.UUID]models.Product
	batches   map[uuid.UUID]models.Batch
}

func newOrderDTO(o models.Order, refs lookups) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		PickupAt:        o.PickupAt,
		PaymentMethod:   o.PaymentMethod,
		DeliveryMethod:  o.DeliveryMethod,
		PaymentProofURL: o.PaymentProofURL,
		Notes:           o.Notes,
		TotalAmount:     o.TotalAmount,
		Items:           make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if customer, ok := refs.customers[o.CustomerID]; ok {
		summary := users.NewCustomerSummary(customer)
		dto.Customer = &summary
	}
	for _, item := range o.Items {
		line := OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			BatchID:   item.BatchID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
		if p, ok := refs.products[item.ProductID]; ok {
			line.ProductName = p.Name
			line.BrandName = p.Brand
		}
		if b, ok := refs.batches[item.BatchID]; ok {
			line.BatchCode = b.Code
		}
		dto.Items = append(dto.Items, line)
	}
	if o.Prescription != nil {
		rx := prescriptions.NewPrescriptionDTO(*o.Prescription)
		dto.Prescription = &rx
	}
	return dto
}
