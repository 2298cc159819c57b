package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	internalorders "github.com/teoalvarez/cartline-backend/internal/orders"
	"github.com/teoalvarez/cartline-backend/pkg/enums"
	"github.com/teoalvarez/cartline-backend/pkg/pagination"
)

func TestAdminListOrdersFilters(t *testing.T) {
	adminID := uuid.New()
	customerID := uuid.New()

	svc := stubOrderService{
		listFn: func(ctx context.Context, params pagination.Params, filters internalorders.ListFilters, actor internalorders.Actor) (*internalorders.OrderList, error) {
			if filters.Status == nil || *filters.Status != enums.OrderStatusShipped {
				t.Fatalf("unexpected status filter %v", filters.Status)
			}
			if filters.UserID == nil || *filters.UserID != customerID {
				t.Fatalf("unexpected user filter %v", filters.UserID)
			}
			if filters.Paid == nil || !*filters.Paid {
				t.Fatalf("unexpected paid filter %v", filters.Paid)
			}
			if filters.DateFrom == nil || filters.DateTo == nil {
				t.Fatal("expected date filters")
			}
			return &internalorders.OrderList{}, nil
		},
	}

	target := "/?status=shipped&user_id=" + customerID.String() + "&paid=true&date_from=2026-01-01&date_to=2026-02-01"
	req := authenticate(httptest.NewRequest(http.MethodGet, target, nil), adminID, enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminListOrders(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminListOrdersRejectsBadStatus(t *testing.T) {
	req := authenticate(httptest.NewRequest(http.MethodGet, "/?status=bogus", nil), uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminListOrders(stubOrderService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminSetStatusHandler(t *testing.T) {
	adminID := uuid.New()
	orderID := uuid.New()

	svc := stubOrderService{
		setStatusFn: func(ctx context.Context, input internalorders.SetStatusInput) (*internalorders.StatusChangeResult, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order %s", input.OrderID)
			}
			if input.Status != enums.OrderStatusCancelled {
				t.Fatalf("unexpected status %s", input.Status)
			}
			if input.Reason == nil || *input.Reason != "customer request" {
				t.Fatalf("unexpected reason %v", input.Reason)
			}
			return &internalorders.StatusChangeResult{
				OrderID:        orderID,
				PreviousStatus: enums.OrderStatusProcessing,
				NewStatus:      enums.OrderStatusCancelled,
			}, nil
		},
	}

	body := `{"status":"cancelled","reason":"customer request"}`
	req := authenticate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), adminID, enums.UserRoleAdmin)
	req = withOrderID(req, orderID)
	resp := httptest.NewRecorder()
	AdminSetStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data internalorders.StatusChangeResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NewStatus != enums.OrderStatusCancelled {
		t.Fatalf("unexpected status %s", envelope.Data.NewStatus)
	}
}

func TestAdminSetStatusRejectsUnknownStatus(t *testing.T) {
	req := authenticate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"teleported"}`)), uuid.New(), enums.UserRoleAdmin)
	req = withOrderID(req, uuid.New())
	resp := httptest.NewRecorder()
	AdminSetStatus(stubOrderService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminBulkSetStatusHandler(t *testing.T) {
	adminID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	svc := stubOrderService{
		bulkFn: func(ctx context.Context, input internalorders.BulkSetStatusInput) (*internalorders.BulkStatusResult, error) {
			if len(input.OrderIDs) != 2 || input.OrderIDs[0] != first || input.OrderIDs[1] != second {
				t.Fatalf("unexpected ids %v", input.OrderIDs)
			}
			if input.Status != enums.OrderStatusShipped {
				t.Fatalf("unexpected status %s", input.Status)
			}
			return &internalorders.BulkStatusResult{Total: 2, Successful: 2}, nil
		},
	}

	body := `{"order_ids":["` + first.String() + `","` + second.String() + `"],"status":"shipped"}`
	req := authenticate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), adminID, enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminBulkSetStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data internalorders.BulkStatusResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Successful != 2 {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestAdminBulkSetStatusRejectsMalformedID(t *testing.T) {
	body := `{"order_ids":["nope"],"status":"shipped"}`
	req := authenticate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminBulkSetStatus(stubOrderService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminDeleteOrderHandler(t *testing.T) {
	adminID := uuid.New()
	orderID := uuid.New()
	deleted := false

	svc := stubOrderService{
		deleteFn: func(ctx context.Context, id uuid.UUID, actor internalorders.Actor) error {
			if id != orderID {
				t.Fatalf("unexpected order %s", id)
			}
			deleted = true
			return nil
		},
	}

	req := authenticate(httptest.NewRequest(http.MethodDelete, "/", nil), adminID, enums.UserRoleAdmin)
	req = withOrderID(req, orderID)
	resp := httptest.NewRecorder()
	AdminDeleteOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !deleted {
		t.Fatal("expected delete to be called")
	}
}
