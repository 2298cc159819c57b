package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teoalvarez/cartline-backend/pkg/enums"
)

// OrderStatusEntry is one row of an order's append-only audit trail. Entries
// are never updated, removed, or reordered.
type OrderStatusEntry struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Note      *string           `gorm:"column:note"`
	ChangedAt time.Time         `gorm:"column:changed_at;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
