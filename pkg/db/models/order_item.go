package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem captures the point-in-time product snapshot for each line of an
// order. Items are never mutated after the order is created.
type OrderItem struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductID           uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name                string    `gorm:"column:name;not null"`
	Slug                string    `gorm:"column:slug;not null"`
	Image               string    `gorm:"column:image"`
	Category            string    `gorm:"column:category;not null"`
	UnitPriceCents      int       `gorm:"column:unit_price_cents;not null"`
	Qty                 int       `gorm:"column:qty;not null"`
	Size                *string   `gorm:"column:size"`
	Color               *string   `gorm:"column:color"`
	CountInStockAtOrder int       `gorm:"column:count_in_stock_at_order;not null;default:0"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
}
