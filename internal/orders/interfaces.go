package orders

import (
	"context"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence for orders, their items and prescriptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	CreatePrescription(ctx context.Context, prescription *models.Prescription) error
	UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	UpdateStatusIf(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query ListQuery) (pagination.Page[models.Order], error)
}

// ListQuery narrows an order listing.
type ListQuery struct {
	CustomerID *uuid.UUID
	Status     *enums.OrderStatus
	Pagination pagination.Params
}
