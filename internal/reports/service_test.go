package reports

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var reportNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Products: product.NewRepository(conn),
		Batches:  batches.NewRepository(conn),
		Users:    users.NewRepository(conn),
		Now:      func() time.Time { return reportNow },
	})
	require.NoError(t, err)
	return svc, conn
}

type fixture struct {
	customer models.User
	product  models.Product
	batch    models.Batch
}

func seed(t *testing.T, conn *gorm.DB) fixture {
	t.Helper()
	customer := models.User{Email: "ana@example.com", FirstName: "Ana", LastName: "Reyes", Role: enums.UserRoleCustomer}
	require.NoError(t, conn.Create(&customer).Error)
	staff := models.User{Email: "rx@example.com", FirstName: "Rosa", LastName: "Lim", Role: enums.UserRolePharmacyStaff}
	require.NoError(t, conn.Create(&staff).Error)

	p := models.Product{Name: "Amoxicillin", Brand: "Amoxil", Category: enums.ProductCategoryCapsule, Price: decimal.RequireFromString("12.50"), LowStockThreshold: 10, IsActive: true}
	require.NoError(t, conn.Create(&p).Error)
	b := models.Batch{ProductID: p.ID, Code: "9001", Quantity: 4, ExpirationDate: day(2025, 1, 30), ReceivedDate: day(2025, 1, 1), IsActive: true}
	require.NoError(t, conn.Create(&b).Error)
	expired := models.Batch{ProductID: p.ID, Code: "9002", Quantity: 2, ExpirationDate: day(2025, 1, 5), ReceivedDate: day(2024, 6, 1), IsActive: true}
	require.NoError(t, conn.Create(&expired).Error)
	return fixture{customer: customer, product: p, batch: b}
}

func seedOrder(t *testing.T, conn *gorm.DB, f fixture, status enums.OrderStatus, qty int, createdAt time.Time) models.Order {
	t.Helper()
	subtotal := f.product.Price.Mul(decimal.NewFromInt(int64(qty)))
	o := models.Order{
		CustomerID:    f.customer.ID,
		Status:        status,
		PickupAt:      createdAt.Add(24 * time.Hour),
		PaymentMethod: enums.PaymentMethodCash,
		TotalAmount:   subtotal,
		CreatedAt:     createdAt,
	}
	require.NoError(t, conn.Create(&o).Error)
	item := models.OrderItem{OrderID: o.ID, BatchID: f.batch.ID, ProductID: f.product.ID, Quantity: qty, UnitPrice: f.product.Price, Subtotal: subtotal}
	require.NoError(t, conn.Create(&item).Error)
	return o
}

func TestDashboardStats(t *testing.T) {
	svc, conn := newTestService(t)
	f := seed(t, conn)
	seedOrder(t, conn, f, enums.OrderStatusCompleted, 2, reportNow.Add(-48*time.Hour))
	seedOrder(t, conn, f, enums.OrderStatusCompleted, 1, reportNow.Add(-24*time.Hour))
	seedOrder(t, conn, f, enums.OrderStatusPending, 1, reportNow.Add(-time.Hour))

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, 1, stats.LowStockProducts)
	assert.Equal(t, 0, stats.OutOfStock)
	assert.Equal(t, 1, stats.ExpiredProducts)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.True(t, decimal.RequireFromString("37.50").Equal(stats.TotalSales), "sales=%s", stats.TotalSales)
}

func TestDashboardStatsEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)
	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.TotalSales.IsZero())
	assert.Zero(t, stats.PendingOrders)
}

func TestRecentOrdersDefaultsAndOrder(t *testing.T) {
	svc, conn := newTestService(t)
	f := seed(t, conn)
	var newest models.Order
	for i := 0; i < 12; i++ {
		newest = seedOrder(t, conn, f, enums.OrderStatusPending, 1, reportNow.Add(time.Duration(i)*time.Minute))
	}

	recent, err := svc.RecentOrders(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, newest.ID, recent[0].ID)
	assert.Equal(t, "Ana Reyes", recent[0].Customer)
	assert.Equal(t, 1, recent[0].ItemCount)
}

func TestSalesReportRange(t *testing.T) {
	svc, conn := newTestService(t)
	f := seed(t, conn)
	seedOrder(t, conn, f, enums.OrderStatusCompleted, 2, time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC))
	seedOrder(t, conn, f, enums.OrderStatusCompleted, 1, time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC))
	seedOrder(t, conn, f, enums.OrderStatusCompleted, 5, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	seedOrder(t, conn, f, enums.OrderStatusCancelled, 3, time.Date(2025, 1, 4, 10, 0, 0, 0, time.UTC))

	report, err := svc.Sales(context.Background(), day(2025, 1, 3), day(2025, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalOrders)
	assert.True(t, decimal.RequireFromString("37.50").Equal(report.TotalSales))
	assert.True(t, decimal.RequireFromString("18.75").Equal(report.AverageOrderValue))
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, "Amoxicillin (Amoxil)", report.TopProducts[0].Name)
	assert.Equal(t, 3, report.TopProducts[0].Quantity)
	assert.Equal(t, "2025-01-03", report.From)

	_, err = svc.Sales(context.Background(), day(2025, 1, 5), day(2025, 1, 3))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Sales(context.Background(), time.Time{}, day(2025, 1, 3))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestInventoryReport(t *testing.T) {
	svc, conn := newTestService(t)
	f := seed(t, conn)

	report, err := svc.Inventory(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", report.AsOf)
	assert.Equal(t, 1, report.TotalProducts)
	assert.Equal(t, 2, report.LowStockItems)
	assert.Equal(t, 0, report.OutOfStockItems)
	assert.Equal(t, 2, report.ExpiringItems)
	assert.Equal(t, 30, report.ExpiringWithinDays)
	require.Len(t, report.StockLevels, 1)
	level := report.StockLevels[0]
	assert.Equal(t, f.product.ID, level.ProductID)
	assert.Equal(t, 6, level.Current)
	assert.Equal(t, enums.AvailabilityLowStock, level.Availability)
}

func TestPrescriptionReport(t *testing.T) {
	svc, conn := newTestService(t)
	f := seed(t, conn)
	o1 := seedOrder(t, conn, f, enums.OrderStatusPending, 1, day(2025, 1, 2))
	o2 := seedOrder(t, conn, f, enums.OrderStatusPending, 1, day(2025, 1, 3))
	o3 := seedOrder(t, conn, f, enums.OrderStatusPending, 1, day(2025, 2, 3))
	for i, o := range []models.Order{o1, o2, o3} {
		rx := models.Prescription{OrderID: o.ID, FileURL: uuid.NewString(), CreatedAt: o.CreatedAt.Add(time.Hour)}
		if i == 1 {
			rx.Status = enums.PrescriptionStatusApproved
		}
		require.NoError(t, conn.Create(&rx).Error)
	}

	report, err := svc.Prescriptions(context.Background(), day(2025, 1, 1), day(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Pending)
	assert.Equal(t, 1, report.Approved)
	assert.Len(t, report.Trend, 2)
}
