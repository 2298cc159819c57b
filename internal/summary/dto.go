package summary

import (
	"time"

	"github.com/google/uuid"
)

// Request bounds the report window. A nil bound leaves that side open.
type Request struct {
	DateFrom *time.Time
	DateTo   *time.Time
}

// MonthlyPoint is one month bucket of paid sales.
type MonthlyPoint struct {
	Month      string `json:"month"`
	SalesCents int64  `json:"sales_cents"`
	Orders     int64  `json:"orders"`
}

// DailyPoint is one day bucket of order volume.
type DailyPoint struct {
	Date   string `json:"date"`
	Orders int64  `json:"orders"`
}

// ProductStat ranks a product by paid revenue.
type ProductStat struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	RevenueCents int64     `json:"revenue_cents"`
	UnitsSold    int64     `json:"units_sold"`
}

// CategoryStat ranks a category by units sold.
type CategoryStat struct {
	Category  string `json:"category"`
	UnitsSold int64  `json:"units_sold"`
}

// LatestOrder is one row of the recent-orders strip on the dashboard.
type LatestOrder struct {
	ID              uuid.UUID `json:"id"`
	UserName        string    `json:"user_name"`
	Status          string    `json:"status"`
	TotalPriceCents int       `json:"total_price_cents"`
	IsPaid          bool      `json:"is_paid"`
	CreatedAt       time.Time `json:"created_at"`
}

// Report is the aggregated dashboard payload.
type Report struct {
	OrdersCount     int64          `json:"orders_count"`
	ProductsCount   int64          `json:"products_count"`
	UsersCount      int64          `json:"users_count"`
	TotalSalesCents int64          `json:"total_sales_cents"`
	MonthlySales    []MonthlyPoint `json:"monthly_sales"`
	DailyOrders     []DailyPoint   `json:"daily_orders"`
	TopProducts     []ProductStat  `json:"top_products"`
	TopCategories   []CategoryStat `json:"top_categories"`
	LatestOrders    []LatestOrder  `json:"latest_orders"`
}
