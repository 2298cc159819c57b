package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/teoalvarez/cartline-backend/pkg/db/models"
	"github.com/teoalvarez/cartline-backend/pkg/enums"
)

// ListFilters describe the inputs supported by the admin orders list.
type ListFilters struct {
	Status   *enums.OrderStatus
	UserID   *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	Paid     *bool
}

// OrderItemView is the serialized line-item snapshot.
type OrderItemView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Image          string    `json:"image,omitempty"`
	Category       string    `json:"category"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Qty            int       `json:"qty"`
	Size           *string   `json:"size,omitempty"`
	Color          *string   `json:"color,omitempty"`
}

// StatusHistoryView is one audit-trail row.
type StatusHistoryView struct {
	Status    enums.OrderStatus `json:"status"`
	Note      *string           `json:"note,omitempty"`
	ChangedAt time.Time         `json:"changed_at"`
}

// OrderSummaryView exposes the aggregated fields returned in listings.
type OrderSummaryView struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	Status          enums.OrderStatus `json:"status"`
	TotalPriceCents int               `json:"total_price_cents"`
	TotalItems      int               `json:"total_items"`
	IsPaid          bool              `json:"is_paid"`
	IsDelivered     bool              `json:"is_delivered"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummaryView `json:"orders"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// OrderDetail is the full serialized order.
type OrderDetail struct {
	ID                 uuid.UUID              `json:"id"`
	UserID             uuid.UUID              `json:"user_id"`
	Status             enums.OrderStatus      `json:"status"`
	Items              []OrderItemView        `json:"items"`
	ShippingAddress    models.ShippingAddress `json:"shipping_address"`
	PaymentMethod      enums.PaymentMethod    `json:"payment_method"`
	ItemsPriceCents    int                    `json:"items_price_cents"`
	ShippingPriceCents *int                   `json:"shipping_price_cents,omitempty"`
	TaxPriceCents      *int                   `json:"tax_price_cents,omitempty"`
	TotalPriceCents    int                    `json:"total_price_cents"`
	IsPaid             bool                   `json:"is_paid"`
	PaidAt             *time.Time             `json:"paid_at,omitempty"`
	IsDelivered        bool                   `json:"is_delivered"`
	DeliveredAt        *time.Time             `json:"delivered_at,omitempty"`
	IsCancelled        bool                   `json:"is_cancelled"`
	IsRejected         bool                   `json:"is_rejected"`
	CancellationReason *string                `json:"cancellation_reason,omitempty"`
	RejectionReason    *string                `json:"rejection_reason,omitempty"`
	ExpectedDeliveryAt *time.Time             `json:"expected_delivery_at,omitempty"`
	StatusHistory      []StatusHistoryView    `json:"status_history"`
	CreatedAt          time.Time              `json:"created_at"`
}

// CreateOrderItemInput is one client-submitted cart line. Prices are never
// trusted from the client; they are re-read from the catalog.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
	Size      *string   `json:"size,omitempty"`
	Color     *string   `json:"color,omitempty"`
}

// CreateOrderInput materializes a cart into an order.
type CreateOrderInput struct {
	UserID          uuid.UUID
	Items           []CreateOrderItemInput
	ShippingAddress models.ShippingAddress
	PaymentMethod   enums.PaymentMethod
	DeliveryIndex   *int
}

// CreateOrderResult reports the created order.
type CreateOrderResult struct {
	OrderID uuid.UUID `json:"order_id"`
	Detail  *OrderDetail
}

// Actor carries the authenticated caller identity into mutating operations.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor may call status-mutating operations.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// SetStatusInput drives the generic transition operation.
type SetStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Reason  *string
	Actor   Actor
}

// StatusChangeResult reports the committed transition.
type StatusChangeResult struct {
	OrderID        uuid.UUID         `json:"order_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	NewStatus      enums.OrderStatus `json:"new_status"`
	Message        string            `json:"message"`
}

// BulkSetStatusInput applies one target status to many orders independently.
type BulkSetStatusInput struct {
	OrderIDs []uuid.UUID
	Status   enums.OrderStatus
	Reason   *string
	Actor    Actor
}

// BulkStatusResult reports aggregate counts only, not per-id detail.
type BulkStatusResult struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// PayPalOrderResult reports the gateway order opened for buyer approval.
type PayPalOrderResult struct {
	PayPalOrderID string `json:"paypal_order_id"`
}

// CapturePayPalInput confirms an approved gateway payment.
type CapturePayPalInput struct {
	OrderID       uuid.UUID
	PayPalOrderID string
	Actor         Actor
}
