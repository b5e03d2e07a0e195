package reports

import (
	"testing"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func batch(productID uuid.UUID, qty int, exp time.Time, active bool) models.Batch {
	return models.Batch{ID: uuid.New(), ProductID: productID, Quantity: qty, ExpirationDate: exp, IsActive: active}
}

func TestDashboardStockCounts(t *testing.T) {
	today := day(2025, 1, 10)
	p := models.Product{ID: uuid.New(), LowStockThreshold: 10}
	q := models.Product{ID: uuid.New(), LowStockThreshold: 5}
	grouped := map[uuid.UUID][]models.Batch{
		p.ID: {
			batch(p.ID, 0, day(2025, 6, 1), true),
			batch(p.ID, 4, day(2025, 6, 1), true),
			batch(p.ID, 50, day(2025, 6, 1), true),
			batch(p.ID, 3, day(2025, 1, 10), true),
		},
		q.ID: {
			batch(q.ID, 2, day(2025, 6, 1), false),
			batch(q.ID, 0, day(2024, 12, 1), true),
		},
	}

	counts := dashboardStock([]models.Product{p, q}, grouped, today)
	assert.Equal(t, 1, counts.out)
	assert.Equal(t, 1, counts.low)
	assert.Equal(t, 1, counts.expired, "only products holding expired units count")
}

func TestInventoryStockCounts(t *testing.T) {
	today := day(2025, 1, 10)
	p := models.Product{ID: uuid.New(), LowStockThreshold: 10}
	grouped := map[uuid.UUID][]models.Batch{
		p.ID: {
			batch(p.ID, 0, day(2025, 6, 1), true),
			batch(p.ID, 8, day(2025, 2, 9), true),
			batch(p.ID, 20, day(2025, 2, 10), true),
			batch(p.ID, 1, day(2025, 1, 15), false),
		},
	}
	counts := inventoryStock([]models.Product{p}, grouped, today, 30)
	assert.Equal(t, 2, counts.low)
	assert.Equal(t, 1, counts.out)
	assert.Equal(t, 1, counts.expiring)
}

func TestSummarizeSales(t *testing.T) {
	a := models.Product{ID: uuid.New(), Name: "Paracetamol", Brand: "Biogesic"}
	b := models.Product{ID: uuid.New(), Name: "Ascorbic Acid", Brand: "Ceelin"}
	orders := []models.Order{
		{
			TotalAmount: decimal.RequireFromString("30.00"),
			CreatedAt:   time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC),
			Items: []models.OrderItem{
				{ProductID: a.ID, Quantity: 2, Subtotal: decimal.RequireFromString("10.00")},
				{ProductID: b.ID, Quantity: 1, Subtotal: decimal.RequireFromString("20.00")},
			},
		},
		{
			TotalAmount: decimal.RequireFromString("15.00"),
			CreatedAt:   time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
			Items: []models.OrderItem{
				{ProductID: a.ID, Quantity: 3, Subtotal: decimal.RequireFromString("15.00")},
			},
		},
	}
	products := map[uuid.UUID]models.Product{a.ID: a, b.ID: b}

	report := summarizeSales(orders, products, time.UTC)
	assert.True(t, decimal.RequireFromString("45").Equal(report.TotalSales))
	assert.Equal(t, 2, report.TotalOrders)
	assert.True(t, decimal.RequireFromString("22.5").Equal(report.AverageOrderValue))
	require.Len(t, report.SalesByDate, 2)
	assert.Equal(t, "2025-01-01", report.SalesByDate[0].Date)
	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Paracetamol (Biogesic)", report.TopProducts[0].Name)
	assert.Equal(t, 5, report.TopProducts[0].Quantity)
	assert.True(t, decimal.RequireFromString("25").Equal(report.TopProducts[0].Revenue))
}

func TestSummarizeSalesBucketsByPharmacyDay(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	orders := []models.Order{{TotalAmount: decimal.NewFromInt(1), CreatedAt: time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)}}

	report := summarizeSales(orders, nil, manila)
	require.Len(t, report.SalesByDate, 1)
	assert.Equal(t, "2025-01-02", report.SalesByDate[0].Date)
}

func TestSummarizeSalesEmptyAndTopFive(t *testing.T) {
	empty := summarizeSales(nil, nil, time.UTC)
	assert.True(t, empty.AverageOrderValue.IsZero())
	assert.NotNil(t, empty.TopProducts)

	order := models.Order{TotalAmount: decimal.NewFromInt(21)}
	for i := 1; i <= 6; i++ {
		order.Items = append(order.Items, models.OrderItem{ProductID: uuid.New(), Quantity: 1, Subtotal: decimal.NewFromInt(int64(i))})
	}
	report := summarizeSales([]models.Order{order}, nil, time.UTC)
	require.Len(t, report.TopProducts, 5)
	assert.True(t, decimal.NewFromInt(6).Equal(report.TopProducts[0].Revenue))
}

func TestSummarizePrescriptions(t *testing.T) {
	rows := []models.Prescription{
		{Status: enums.PrescriptionStatusPending, CreatedAt: time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC)},
		{Status: enums.PrescriptionStatusApproved, CreatedAt: time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)},
		{Status: enums.PrescriptionStatusRejected, CreatedAt: time.Date(2025, 1, 2, 5, 0, 0, 0, time.UTC)},
	}
	report := summarizePrescriptions(rows, time.UTC)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Pending)
	assert.Equal(t, 1, report.Approved)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, []DailyCount{{Date: "2025-01-01", Count: 1}, {Date: "2025-01-02", Count: 2}}, report.Trend)
}
