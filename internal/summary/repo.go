package summary

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/teoalvarez/cartline-backend/pkg/db/models"
)

const (
	totalSalesSQL = `
SELECT COALESCE(SUM(total_price_cents), 0) AS value
FROM orders
WHERE is_paid = TRUE
  AND created_at >= ? AND created_at < ?
`

	monthlySalesSQL = `
SELECT
  to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
  COALESCE(SUM(total_price_cents), 0) AS sales_cents,
  COUNT(*) AS orders
FROM orders
WHERE is_paid = TRUE
  AND created_at >= ?
GROUP BY month
ORDER BY month ASC
`

	dailyOrdersSQL = `
SELECT
  to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS date,
  COUNT(*) AS orders
FROM orders
WHERE created_at >= ? AND created_at < ?
GROUP BY date
ORDER BY date ASC
`

	topProductsSQL = `
SELECT
  oi.product_id,
  oi.name,
  COALESCE(SUM(oi.unit_price_cents * oi.qty), 0) AS revenue_cents,
  COALESCE(SUM(oi.qty), 0) AS units_sold
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.is_paid = TRUE
  AND o.created_at >= ? AND o.created_at < ?
GROUP BY oi.product_id, oi.name
ORDER BY revenue_cents DESC
LIMIT ?
`

	topCategoriesSQL = `
SELECT
  oi.category,
  COALESCE(SUM(oi.qty), 0) AS units_sold
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.is_paid = TRUE
  AND o.created_at >= ? AND o.created_at < ?
GROUP BY oi.category
ORDER BY units_sold DESC
LIMIT ?
`

	latestOrdersSQL = `
SELECT
  o.id,
  COALESCE(u.name, '') AS user_name,
  o.status,
  o.total_price_cents,
  o.is_paid,
  o.created_at
FROM orders o
LEFT JOIN users u ON u.id = o.user_id
ORDER BY o.created_at DESC
LIMIT ?
`
)

// Repository defines the read-side aggregations behind the admin dashboard.
type Repository interface {
	CountOrders(ctx context.Context, from, to time.Time) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	TotalSalesCents(ctx context.Context, from, to time.Time) (int64, error)
	MonthlySales(ctx context.Context, since time.Time) ([]MonthlyPoint, error)
	DailyOrders(ctx context.Context, from, to time.Time) ([]DailyPoint, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductStat, error)
	TopCategories(ctx context.Context, from, to time.Time, limit int) ([]CategoryStat, error)
	LatestOrders(ctx context.Context, limit int) ([]LatestOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a summary repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountOrders(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Count(&count).Error
	return count, err
}

func (r *repository) TotalSalesCents(ctx context.Context, from, to time.Time) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).
		Raw(totalSalesSQL, from, to).
		Scan(&value).Error
	return value, err
}

func (r *repository) MonthlySales(ctx context.Context, since time.Time) ([]MonthlyPoint, error) {
	var points []MonthlyPoint
	err := r.db.WithContext(ctx).
		Raw(monthlySalesSQL, since).
		Scan(&points).Error
	return points, err
}

func (r *repository) DailyOrders(ctx context.Context, from, to time.Time) ([]DailyPoint, error) {
	var points []DailyPoint
	err := r.db.WithContext(ctx).
		Raw(dailyOrdersSQL, from, to).
		Scan(&points).Error
	return points, err
}

func (r *repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductStat, error) {
	var stats []ProductStat
	err := r.db.WithContext(ctx).
		Raw(topProductsSQL, from, to, limit).
		Scan(&stats).Error
	return stats, err
}

func (r *repository) TopCategories(ctx context.Context, from, to time.Time, limit int) ([]CategoryStat, error) {
	var stats []CategoryStat
	err := r.db.WithContext(ctx).
		Raw(topCategoriesSQL, from, to, limit).
		Scan(&stats).Error
	return stats, err
}

func (r *repository) LatestOrders(ctx context.Context, limit int) ([]LatestOrder, error) {
	var rows []LatestOrder
	err := r.db.WithContext(ctx).
		Raw(latestOrdersSQL, limit).
		Scan(&rows).Error
	return rows, err
}
