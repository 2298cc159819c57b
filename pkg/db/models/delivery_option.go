package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryOption is a configured lead time plus flat shipping price and
// free-shipping threshold, selected at checkout. Options are ordered by
// Position; the last one (slowest) is the default.
type DeliveryOption struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                  string    `gorm:"column:name;not null"`
	DaysToDeliver         int       `gorm:"column:days_to_deliver;not null"`
	ShippingPriceCents    int       `gorm:"column:shipping_price_cents;not null"`
	FreeShippingMinCents  int       `gorm:"column:free_shipping_min_cents;not null;default:0"`
	Position              int       `gorm:"column:position;not null;default:0"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
}
