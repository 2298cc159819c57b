package orders

import (
	"github.com/teoalvarez/cartline-backend/pkg/enums"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
)

// ValidateTransition enforces the lifecycle rules before any side effects run.
// Terminal states are frozen. Non-terminal states may move freely between each
// other or into a terminal state, with one precondition: delivered and
// completed are only reachable once payment was confirmed (processing and
// shipped confirm payment implicitly, so they carry no such guard).
func ValidateTransition(current, target enums.OrderStatus, paid bool) error {
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]string{"status": target.String()})
	}
	if current == target {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already in requested status").
			WithDetails(map[string]string{"status": current.String()})
	}
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state").
			WithDetails(map[string]string{"status": current.String()})
	}
	if (target == enums.OrderStatusDelivered || target == enums.OrderStatusCompleted) && !paid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order must be paid before delivery")
	}
	return nil
}
