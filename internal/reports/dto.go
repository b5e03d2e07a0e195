package reports

import (
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalCustomers   int64           `json:"total_customers"`
	LowStockProducts int             `json:"low_stock_products"`
	OutOfStock       int             `json:"out_of_stock"`
	ExpiredProducts  int             `json:"expired_products"`
	PendingOrders    int64           `json:"pending_orders"`
	TotalSales       decimal.Decimal `json:"total_sales"`
}

type RecentOrder struct {
	ID         uuid.UUID         `json:"id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	Customer   string            `json:"customer"`
	Date       time.Time         `json:"date"`
	Status     enums.OrderStatus `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	ItemCount  int               `json:"item_count"`
}

type DailyAmount struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Orders int             `json:"orders"`
}

type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	SalesByDate       []DailyAmount   `json:"sales_by_date"`
	TopProducts       []TopProduct    `json:"top_products"`
}

type StockLevel struct {
	ProductID         uuid.UUID             `json:"product_id"`
	Name              string                `json:"name"`
	Category          enums.ProductCategory `json:"category"`
	Price             decimal.Decimal       `json:"price"`
	Current           int                   `json:"current"`
	Threshold         int                   `json:"threshold"`
	Availability      enums.Availability    `json:"availability"`
	AvailabilityLabel string                `json:"availability_label"`
}

type InventoryReport struct {
	AsOf               string       `json:"as_of"`
	TotalProducts      int          `json:"total_products"`
	LowStockItems      int          `json:"low_stock_items"`
	OutOfStockItems    int          `json:"out_of_stock_items"`
	ExpiringItems      int          `json:"expiring_items"`
	ExpiringWithinDays int          `json:"expiring_within_days"`
	StockLevels        []StockLevel `json:"stock_levels"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type PrescriptionReport struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Total    int          `json:"total_prescriptions"`
	Pending  int          `json:"pending_verifications"`
	Approved int          `json:"verified_prescriptions"`
	Rejected int          `json:"rejected_prescriptions"`
	Trend    []DailyCount `json:"prescription_trends"`
}
