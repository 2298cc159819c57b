package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teoalvarez/cartline-backend/pkg/config"
)

func newTestServer(t *testing.T, captureStatus string) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-abc",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["intent"] != "CAPTURE" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PAYPAL-ORDER-1",
			"status": "CREATED",
		})
	})
	mux.HandleFunc("/v2/checkout/orders/PAYPAL-ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PAYPAL-ORDER-1",
			"status": captureStatus,
			"payer": map[string]any{
				"email_address": "buyer@example.com",
			},
			"purchase_units": []map[string]any{{
				"payments": map[string]any{
					"captures": []map[string]any{{
						"status": captureStatus,
						"amount": map[string]any{"currency_code": "USD", "value": "42.50"},
					}},
				},
			}},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenCalls
}

func testConfig(url string) config.PayPalConfig {
	return config.PayPalConfig{
		BaseURL:      url,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Timeout:      5 * time.Second,
		Currency:     "usd",
	}
}

func TestCreateAndCaptureOrder(t *testing.T) {
	server, tokenCalls := newTestServer(t, CaptureStatusCompleted)
	client, err := NewClient(context.Background(), testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Currency() != "USD" {
		t.Fatalf("expected normalized currency USD, got %s", client.Currency())
	}

	created, err := client.CreateOrder(context.Background(), "order-ref", 4250)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.ID != "PAYPAL-ORDER-1" {
		t.Fatalf("unexpected order id %s", created.ID)
	}

	captured, err := client.CaptureOrder(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("capture order: %v", err)
	}
	if captured.Status != CaptureStatusCompleted {
		t.Fatalf("unexpected status %s", captured.Status)
	}
	if captured.PayerEmail != "buyer@example.com" {
		t.Fatalf("unexpected payer email %s", captured.PayerEmail)
	}
	if captured.CapturedCents != 4250 {
		t.Fatalf("expected 4250 captured cents, got %d", captured.CapturedCents)
	}

	if *tokenCalls != 1 {
		t.Fatalf("expected one token fetch, got %d", *tokenCalls)
	}
}

func TestCaptureOrderIncompleteYieldsZeroCents(t *testing.T) {
	server, _ := newTestServer(t, "PENDING")
	client, err := NewClient(context.Background(), testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	captured, err := client.CaptureOrder(context.Background(), "PAYPAL-ORDER-1")
	if err != nil {
		t.Fatalf("capture order: %v", err)
	}
	if captured.CapturedCents != 0 {
		t.Fatalf("expected no captured cents for pending capture, got %d", captured.CapturedCents)
	}
}

func TestNewClientValidatesCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), config.PayPalConfig{BaseURL: "https://example.com"}, nil)
	if err == nil {
		t.Fatal("expected missing client id error")
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	server, _ := newTestServer(t, CaptureStatusCompleted)
	client, err := NewClient(context.Background(), testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), "ref", 0); err == nil {
		t.Fatal("expected amount validation error")
	}
}
