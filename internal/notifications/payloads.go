package notifications

import (
	"github.com/google/uuid"

	"github.com/teoalvarez/cartline-backend/pkg/enums"
)

type orderStatusChangedPayload struct {
	OrderID        uuid.UUID         `json:"order_id"`
	UserID         uuid.UUID         `json:"user_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	NewStatus      enums.OrderStatus `json:"new_status"`
	Reason         *string           `json:"reason,omitempty"`
}

type purchaseReceiptPayload struct {
	OrderID         uuid.UUID `json:"order_id"`
	UserID          uuid.UUID `json:"user_id"`
	TotalPriceCents int       `json:"total_price_cents"`
}

type reviewRequestPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}
