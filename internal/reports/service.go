package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	DefaultRecentLimit        = 10
	maxRecentLimit            = 100
	defaultExpiringWithinDays = 30
)

// Service computes read-only dashboard figures and reports.
type Service interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	Sales(ctx context.Context, from, to time.Time) (*SalesReport, error)
	Inventory(ctx context.Context, asOf time.Time) (*InventoryReport, error)
	Prescriptions(ctx context.Context, from, to time.Time) (*PrescriptionReport, error)
}

type ServiceParams struct {
	Repo               *Repository
	Products           *product.Repository
	Batches            *batches.Repository
	Users              *users.Repository
	Location           *time.Location
	Now                func() time.Time
	ExpiringWithinDays int
}

type service struct {
	repo         *Repository
	products     *product.Repository
	batches      *batches.Repository
	users        *users.Repository
	loc          *time.Location
	now          func() time.Time
	expiringDays int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("batch repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	window := params.ExpiringWithinDays
	if window <= 0 {
		window = defaultExpiringWithinDays
	}
	return &service{
		repo:         params.Repo,
		products:     params.Products,
		batches:      params.Batches,
		users:        params.Users,
		loc:          loc,
		now:          now,
		expiringDays: window,
	}, nil
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	customers, err := s.users.CountByRole(ctx, enums.UserRoleCustomer)
	if err != nil {
		return nil, dependency(err, "count customers")
	}
	catalog, grouped, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountOrders(ctx, enums.OrderStatusPending)
	if err != nil {
		return nil, dependency(err, "count pending orders")
	}
	sales, err := s.repo.SumTotals(ctx, enums.OrderStatusCompleted)
	if err != nil {
		return nil, dependency(err, "sum completed orders")
	}

	counts := dashboardStock(catalog, grouped, batches.CalendarDay(s.now(), s.loc))
	return &DashboardStats{
		TotalCustomers:   customers,
		LowStockProducts: counts.low,
		OutOfStock:       counts.out,
		ExpiredProducts:  counts.expired,
		PendingOrders:    pending,
		TotalSales:       sales,
	}, nil
}

func (s *service) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	rows, err := s.repo.RecentOrders(ctx, limit)
	if err != nil {
		return nil, dependency(err, "list recent orders")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.CustomerID)
	}
	customers, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dependency(err, "load customers")
	}

	out := make([]RecentOrder, 0, len(rows))
	for _, o := range rows {
		entry := RecentOrder{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			Date:       o.CreatedAt,
			Status:     o.Status,
			Total:      o.TotalAmount,
			ItemCount:  len(o.Items),
		}
		if u, ok := customers[o.CustomerID]; ok {
			entry.Customer = u.FullName()
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *service) Sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	start, end, err := s.dayRange(from, to)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.OrdersBetween(ctx, enums.OrderStatusCompleted, start, end)
	if err != nil {
		return nil, dependency(err, "list completed orders")
	}

	productIDs := []uuid.UUID{}
	for _, o := range orders {
		for _, item := range o.Items {
			productIDs = append(productIDs, item.ProductID)
		}
	}
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, dependency(err, "load products")
	}

	report := summarizeSales(orders, products, s.loc)
	report.From = from.Format(dayLayout)
	report.To = to.Format(dayLayout)
	return &report, nil
}

func (s *service) Inventory(ctx context.Context, asOf time.Time) (*InventoryReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	today := batches.CalendarDay(asOf, s.loc)
	catalog, grouped, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	counts := inventoryStock(catalog, grouped, today, s.expiringDays)
	return &InventoryReport{
		AsOf:               today.Format(dayLayout),
		TotalProducts:      len(catalog),
		LowStockItems:      counts.low,
		OutOfStockItems:    counts.out,
		ExpiringItems:      counts.expiring,
		ExpiringWithinDays: s.expiringDays,
		StockLevels:        stockLevels(catalog, grouped, today),
	}, nil
}

func (s *service) Prescriptions(ctx context.Context, from, to time.Time) (*PrescriptionReport, error) {
	start, end, err := s.dayRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.PrescriptionsBetween(ctx, start, end)
	if err != nil {
		return nil, dependency(err, "list prescriptions")
	}
	report := summarizePrescriptions(rows, s.loc)
	report.From = from.Format(dayLayout)
	report.To = to.Format(dayLayout)
	return &report, nil
}

func (s *service) catalog(ctx context.Context) ([]models.Product, map[uuid.UUID][]models.Batch, error) {
	catalog, err := s.products.ListAll(ctx, false)
	if err != nil {
		return nil, nil, dependency(err, "list products")
	}
	all, err := s.batches.ListAll(ctx)
	if err != nil {
		return nil, nil, dependency(err, "list batches")
	}
	grouped := make(map[uuid.UUID][]models.Batch, len(catalog))
	for _, b := range all {
		grouped[b.ProductID] = append(grouped[b.ProductID], b)
	}
	return catalog, grouped, nil
}

// dayRange turns inclusive calendar days into a half-open instant range in the
// pharmacy time zone.
func (s *service) dayRange(from, to time.Time) (time.Time, time.Time, error) {
	errs := pkgerrors.FieldErrors{}
	if from.IsZero() {
		errs.Add("start_date", "Start date is required.")
	}
	if to.IsZero() {
		errs.Add("end_date", "End date is required.")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		errs.Add("end_date", "End date must not be before start date.")
	}
	if err := errs.Err("invalid report range"); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)
	return start, end, nil
}

func dependency(err error, what string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: "+what)
}
