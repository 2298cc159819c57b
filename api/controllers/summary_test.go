package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	internalorders "github.com/teoalvarez/cartline-backend/internal/orders"
	"github.com/teoalvarez/cartline-backend/internal/summary"
	"github.com/teoalvarez/cartline-backend/pkg/enums"
)

type stubSummaryService struct {
	reportFn func(ctx context.Context, req summary.Request, actor internalorders.Actor) (*summary.Report, error)
}

func (s stubSummaryService) Report(ctx context.Context, req summary.Request, actor internalorders.Actor) (*summary.Report, error) {
	return s.reportFn(ctx, req, actor)
}

func TestAdminSummaryHandler(t *testing.T) {
	adminID := uuid.New()

	svc := stubSummaryService{
		reportFn: func(ctx context.Context, req summary.Request, actor internalorders.Actor) (*summary.Report, error) {
			if req.DateFrom == nil || req.DateTo == nil {
				t.Fatal("expected date range")
			}
			if actor.UserID != adminID || actor.Role != enums.UserRoleAdmin {
				t.Fatalf("unexpected actor %+v", actor)
			}
			return &summary.Report{OrdersCount: 7, TotalSalesCents: 125000}, nil
		},
	}

	req := authenticate(httptest.NewRequest(http.MethodGet, "/?date_from=2026-01-01&date_to=2026-02-01", nil), adminID, enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminSummary(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data summary.Report `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrdersCount != 7 || envelope.Data.TotalSalesCents != 125000 {
		t.Fatalf("unexpected report %+v", envelope.Data)
	}
}

func TestAdminSummaryRejectsBadDate(t *testing.T) {
	req := authenticate(httptest.NewRequest(http.MethodGet, "/?date_from=January", nil), uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminSummary(stubSummaryService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
