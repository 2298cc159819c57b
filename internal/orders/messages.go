package orders

import "github.com/teoalvarez/cartline-backend/pkg/enums"

var statusChangeMessages = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Order moved back to pending",
	enums.OrderStatusProcessing: "Order is now being processed",
	enums.OrderStatusShipped:    "Order has been shipped",
	enums.OrderStatusDelivered:  "Order has been delivered",
	enums.OrderStatusCompleted:  "Order completed",
	enums.OrderStatusCancelled:  "Order has been cancelled",
	enums.OrderStatusRejected:   "Order has been rejected",
}

// StatusChangeMessage returns the display message for a committed transition.
func StatusChangeMessage(status enums.OrderStatus) string {
	if msg, ok := statusChangeMessages[status]; ok {
		return msg
	}
	return "Order status updated"
}
