package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes order creation, the status lifecycle and order reads.
type Service interface {
	BuildOrder(ctx context.Context, customerID uuid.UUID, input BuildOrderInput) (*OrderDTO, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	Get(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error)
}

// Viewer identifies who is reading orders. Customers only see their own.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// ListParams filters an order listing. CustomerID is ignored for customers.
type ListParams struct {
	CustomerID *uuid.UUID
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

type customerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the orders service.
type ServiceParams struct {
	Repo            Repository
	Batches         *batches.Repository
	Products        *product.Repository
	Customers       customerDirectory
	Tx              txRunner
	Metrics         *metrics.OrderMetrics
	Logger          *logger.Logger
	Location        *time.Location
	PickupOpenHour  int
	PickupCloseHour int
	Now             func() time.Time
}

type service struct {
	repo      Repository
	batches   *batches.Repository
	products  *product.Repository
	customers customerDirectory
	tx        txRunner
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	loc       *time.Location
	openHour  int
	closeHour int
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("batch repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer directory required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	openHour, closeHour := params.PickupOpenHour, params.PickupCloseHour
	if openHour == 0 && closeHour == 0 {
		openHour, closeHour = defaultOpenHour, defaultCloseHour
	}
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return nil, fmt.Errorf("pickup window %d-%d is invalid", openHour, closeHour)
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:      params.Repo,
		batches:   params.Batches,
		products:  params.Products,
		customers: params.Customers,
		tx:        params.Tx,
		metrics:   params.Metrics,
		logg:      logg,
		loc:       loc,
		openHour:  openHour,
		closeHour: closeHour,
		now:       now,
	}, nil
}

func (s *service) Get(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error) {
	dto, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.Role.IsStaff() && dto.CustomerID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	return dto, nil
}

func (s *service) List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		errs := pkgerrors.FieldErrors{}
		errs.Add("status", "Unknown order status.")
		return nil, errs.Err("invalid order filter")
	}
	query := ListQuery{
		CustomerID: params.CustomerID,
		Status:     params.Status,
		Pagination: params.Pagination,
	}
	if !viewer.Role.IsStaff() {
		own := viewer.UserID
		query.CustomerID = &own
	}

	page, err := s.repo.List(ctx, query)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	refs, err := s.lookups(ctx, page.Items)
	if err != nil {
		return nil, err
	}
	result := &ListResult{
		Orders:     make([]OrderDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, o := range page.Items {
		result.Orders = append(result.Orders, newOrderDTO(o, refs))
	}
	return result, nil
}

func (s *service) get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, orderNotFound(orderID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	refs, err := s.lookups(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	dto := newOrderDTO(*order, refs)
	return &dto, nil
}

func (s *service) lookups(ctx context.Context, orders []models.Order) (lookups, error) {
	customerIDs := make([]uuid.UUID, 0, len(orders))
	productIDs := []uuid.UUID{}
	batchIDs := []uuid.UUID{}
	for _, o := range orders {
		customerIDs = append(customerIDs, o.CustomerID)
		for _, item := range o.Items {
			productIDs = append(productIDs, item.ProductID)
			batchIDs = append(batchIDs, item.BatchID)
		}
	}

	var (
		refs lookups
		err  error
	)
	if refs.customers, err = s.customers.FindByIDs(ctx, customerIDs); err != nil {
		return lookups{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customers")
	}
	if refs.products, err = s.products.FindByIDs(ctx, productIDs); err != nil {
		return lookups{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load products")
	}
	if refs.batches, err = s.batches.FindByIDs(ctx, batchIDs); err != nil {
		return lookups{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load batches")
	}
	return refs, nil
}

func orderNotFound(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"order_id": orderID.String()})
}
