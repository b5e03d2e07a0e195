package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	dayLayout       = "2006-01-02"
	topProductLimit = 5
)

type stockCounts struct {
	low      int
	out      int
	expiring int
	expired  int
}

// dashboardStock counts sellable batches per stock status and the products
// still holding expired units.
func dashboardStock(products []models.Product, grouped map[uuid.UUID][]models.Batch, today time.Time) stockCounts {
	var counts stockCounts
	for _, p := range products {
		hasExpired := false
		for _, b := range grouped[p.ID] {
			if !b.IsActive {
				continue
			}
			if batches.IsSellable(b, today) {
				switch batches.StockStatus(b, p.LowStockThreshold) {
				case enums.StockStatusOutOfStock:
					counts.out++
				case enums.StockStatusLowStock:
					counts.low++
				}
				continue
			}
			if b.Quantity > 0 {
				hasExpired = true
			}
		}
		if hasExpired {
			counts.expired++
		}
	}
	return counts
}

// inventoryStock counts active batches at or under threshold, empty, and
// expiring on or before today plus window days.
func inventoryStock(products []models.Product, grouped map[uuid.UUID][]models.Batch, today time.Time, window int) stockCounts {
	limit := today.AddDate(0, 0, window)
	var counts stockCounts
	for _, p := range products {
		for _, b := range grouped[p.ID] {
			if !b.IsActive {
				continue
			}
			if b.Quantity <= p.LowStockThreshold {
				counts.low++
			}
			if b.Quantity == 0 {
				counts.out++
			}
			if !batches.CalendarDay(b.ExpirationDate, time.UTC).After(limit) {
				counts.expiring++
			}
		}
	}
	return counts
}

func stockLevels(products []models.Product, grouped map[uuid.UUID][]models.Batch, today time.Time) []StockLevel {
	out := make([]StockLevel, 0, len(products))
	for _, p := range products {
		rows := grouped[p.ID]
		_, verdict := product.Availability(p, rows, today)
		out = append(out, StockLevel{
			ProductID:         p.ID,
			Name:              displayName(p),
			Category:          p.Category,
			Price:             p.Price,
			Current:           product.TotalStock(rows),
			Threshold:         p.LowStockThreshold,
			Availability:      verdict,
			AvailabilityLabel: verdict.Label(),
		})
	}
	return out
}

// summarizeSales buckets completed orders by their calendar day in loc and
// ranks products by revenue.
func summarizeSales(orders []models.Order, products map[uuid.UUID]models.Product, loc *time.Location) SalesReport {
	report := SalesReport{
		TotalSales:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
		SalesByDate:       []DailyAmount{},
		TopProducts:       []TopProduct{},
	}

	byDay := map[string]*DailyAmount{}
	byProduct := map[uuid.UUID]*TopProduct{}
	for _, o := range orders {
		report.TotalSales = report.TotalSales.Add(o.TotalAmount)
		report.TotalOrders++

		key := batches.CalendarDay(o.CreatedAt, loc).Format(dayLayout)
		bucket, ok := byDay[key]
		if !ok {
			bucket = &DailyAmount{Date: key, Amount: decimal.Zero}
			byDay[key] = bucket
		}
		bucket.Amount = bucket.Amount.Add(o.TotalAmount)
		bucket.Orders++

		for _, item := range o.Items {
			top, ok := byProduct[item.ProductID]
			if !ok {
				top = &TopProduct{ProductID: item.ProductID, Revenue: decimal.Zero}
				if p, found := products[item.ProductID]; found {
					top.Name = displayName(p)
				}
				byProduct[item.ProductID] = top
			}
			top.Quantity += item.Quantity
			top.Revenue = top.Revenue.Add(item.Subtotal)
		}
	}

	if report.TotalOrders > 0 {
		report.AverageOrderValue = report.TotalSales.Div(decimal.NewFromInt(int64(report.TotalOrders))).Round(2)
	}
	for _, bucket := range byDay {
		report.SalesByDate = append(report.SalesByDate, *bucket)
	}
	sort.Slice(report.SalesByDate, func(i, j int) bool {
		return report.SalesByDate[i].Date < report.SalesByDate[j].Date
	})

	for _, top := range byProduct {
		report.TopProducts = append(report.TopProducts, *top)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	if len(report.TopProducts) > topProductLimit {
		report.TopProducts = report.TopProducts[:topProductLimit]
	}
	return report
}

func summarizePrescriptions(rows []models.Prescription, loc *time.Location) PrescriptionReport {
	report := PrescriptionReport{Trend: []DailyCount{}}
	byDay := map[string]int{}
	for _, p := range rows {
		report.Total++
		switch p.Status {
		case enums.PrescriptionStatusPending:
			report.Pending++
		case enums.PrescriptionStatusApproved:
			report.Approved++
		case enums.PrescriptionStatusRejected:
			report.Rejected++
		}
		byDay[batches.CalendarDay(p.CreatedAt, loc).Format(dayLayout)]++
	}
	for day, count := range byDay {
		report.Trend = append(report.Trend, DailyCount{Date: day, Count: count})
	}
	sort.Slice(report.Trend, func(i, j int) bool {
		return report.Trend[i].Date < report.Trend[j].Date
	})
	return report
}

func displayName(p models.Product) string {
	if p.Brand == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Brand)
}
