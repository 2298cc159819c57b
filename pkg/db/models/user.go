package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teoalvarez/cartline-backend/pkg/enums"
)

// User is the purchaser reference. Orders hold a weak reference to it: an
// order survives user deletion, listings then render a deleted-user
// placeholder.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
