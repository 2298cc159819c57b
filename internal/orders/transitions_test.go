package orders

import (
	"testing"

	"github.com/teoalvarez/cartline-backend/pkg/enums"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
)

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		name     string
		current  enums.OrderStatus
		target   enums.OrderStatus
		paid     bool
		wantCode pkgerrors.Code
	}{
		{name: "pending to processing", current: enums.OrderStatusPending, target: enums.OrderStatusProcessing},
		{name: "processing to shipped", current: enums.OrderStatusProcessing, target: enums.OrderStatusShipped, paid: true},
		{name: "shipped to delivered", current: enums.OrderStatusShipped, target: enums.OrderStatusDelivered, paid: true},
		{name: "delivered to completed", current: enums.OrderStatusDelivered, target: enums.OrderStatusCompleted, paid: true},
		{name: "pending to cancelled", current: enums.OrderStatusPending, target: enums.OrderStatusCancelled},
		{name: "processing to rejected", current: enums.OrderStatusProcessing, target: enums.OrderStatusRejected, paid: true},
		{name: "delivered back to shipped", current: enums.OrderStatusDelivered, target: enums.OrderStatusShipped, paid: true},
		{name: "unknown target", current: enums.OrderStatusPending, target: enums.OrderStatus("archived"), wantCode: pkgerrors.CodeValidation},
		{name: "same status", current: enums.OrderStatusProcessing, target: enums.OrderStatusProcessing, paid: true, wantCode: pkgerrors.CodeStateConflict},
		{name: "completed is frozen", current: enums.OrderStatusCompleted, target: enums.OrderStatusPending, paid: true, wantCode: pkgerrors.CodeStateConflict},
		{name: "cancelled is frozen", current: enums.OrderStatusCancelled, target: enums.OrderStatusProcessing, wantCode: pkgerrors.CodeStateConflict},
		{name: "rejected is frozen", current: enums.OrderStatusRejected, target: enums.OrderStatusPending, wantCode: pkgerrors.CodeStateConflict},
		{name: "delivered needs payment", current: enums.OrderStatusPending, target: enums.OrderStatusDelivered, wantCode: pkgerrors.CodeStateConflict},
		{name: "completed needs payment", current: enums.OrderStatusShipped, target: enums.OrderStatusCompleted, wantCode: pkgerrors.CodeStateConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.current, tc.target, tc.paid)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("expected transition to be allowed, got %v", err)
				}
				return
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.wantCode {
				t.Fatalf("expected code %s, got %v", tc.wantCode, err)
			}
		})
	}
}
