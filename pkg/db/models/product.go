package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents the canonical catalog listing. CountInStock is the one
// piece of shared mutable state touched by concurrent order flows; it is only
// ever adjusted through the stock ledger's conditional updates.
type Product struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug         string         `gorm:"column:slug;not null;uniqueIndex"`
	Name         string         `gorm:"column:name;not null"`
	Category     string         `gorm:"column:category;not null"`
	Brand        string         `gorm:"column:brand"`
	Images       pq.StringArray `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	PriceCents   int            `gorm:"column:price_cents;not null"`
	CountInStock int            `gorm:"column:count_in_stock;not null;default:0"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
