package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teoalvarez/cartline-backend/pkg/enums"
)

// ShippingAddress is the value object embedded on every order.
type ShippingAddress struct {
	FullName   string `gorm:"column:ship_full_name" json:"full_name"`
	Street     string `gorm:"column:ship_street" json:"street"`
	City       string `gorm:"column:ship_city" json:"city"`
	PostalCode string `gorm:"column:ship_postal_code" json:"postal_code"`
	Country    string `gorm:"column:ship_country" json:"country"`
	Province   string `gorm:"column:ship_province" json:"province"`
	Phone      string `gorm:"column:ship_phone" json:"phone"`
}

// IsZero reports whether no address fields were provided.
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// PaymentResult captures what the gateway reported when payment settled.
type PaymentResult struct {
	GatewayOrderID string `gorm:"column:payment_gateway_order_id" json:"gateway_order_id"`
	Status         string `gorm:"column:payment_gateway_status" json:"status"`
	PayerEmail     string `gorm:"column:payment_payer_email" json:"payer_email"`
	CapturedCents  int    `gorm:"column:payment_captured_cents" json:"captured_cents"`
}

// Order is the central purchase record. Line items and status history rows
// are owned exclusively by the order and cascade on delete.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	ShippingAddress    ShippingAddress     `gorm:"embedded"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'paypal'"`
	PaymentResult      PaymentResult       `gorm:"embedded"`
	ItemsPriceCents    int                 `gorm:"column:items_price_cents;not null"`
	ShippingPriceCents *int                `gorm:"column:shipping_price_cents"`
	TaxPriceCents      *int                `gorm:"column:tax_price_cents"`
	TotalPriceCents    int                 `gorm:"column:total_price_cents;not null"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	IsPaid             bool                `gorm:"column:is_paid;not null;default:false"`
	PaidAt             *time.Time          `gorm:"column:paid_at"`
	IsDelivered        bool                `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt        *time.Time          `gorm:"column:delivered_at"`
	IsCancelled        bool                `gorm:"column:is_cancelled;not null;default:false"`
	CancelledAt        *time.Time          `gorm:"column:cancelled_at"`
	IsRejected         bool                `gorm:"column:is_rejected;not null;default:false"`
	RejectedAt         *time.Time          `gorm:"column:rejected_at"`
	ShippedAt          *time.Time          `gorm:"column:shipped_at"`
	CompletedAt        *time.Time          `gorm:"column:completed_at"`
	CancellationReason *string             `gorm:"column:cancellation_reason"`
	RejectionReason    *string             `gorm:"column:rejection_reason"`
	ExpectedDeliveryAt *time.Time          `gorm:"column:expected_delivery_at"`
	Items              []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory      []OrderStatusEntry  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
