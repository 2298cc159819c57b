package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/teoalvarez/cartline-backend/pkg/config"
	"github.com/teoalvarez/cartline-backend/pkg/logger"
)

const (
	// CaptureStatusCompleted is the terminal status PayPal reports for a
	// successful capture.
	CaptureStatusCompleted = "COMPLETED"

	tokenExpiryMargin = 30 * time.Second
)

var (
	errClientIDRequired = errors.New("paypal client id is required")
	errSecretRequired   = errors.New("paypal client secret is required")
	errBaseURLRequired  = errors.New("paypal base url is required")
)

// Client wraps PayPal's Orders v2 REST API with OAuth token caching.
type Client struct {
	baseURL  string
	clientID string
	secret   string
	currency string
	http     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient validates the PayPal credentials and builds the REST client.
func NewClient(ctx context.Context, cfg config.PayPalConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errClientIDRequired
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:  baseURL,
		clientID: strings.TrimSpace(cfg.ClientID),
		secret:   strings.TrimSpace(cfg.ClientSecret),
		currency: strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		http:     &http.Client{Timeout: timeout},
	}
	if c.currency == "" {
		c.currency = "USD"
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("paypal client initialized (%s)", baseURL))
	}
	return c, nil
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// OrderResult is the subset of a PayPal order response the platform consumes.
type OrderResult struct {
	ID            string
	Status        string
	PayerEmail    string
	CapturedCents int
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnitPayload struct {
	ReferenceID string        `json:"reference_id,omitempty"`
	Amount      amountPayload `json:"amount"`
}

type orderRequest struct {
	Intent        string                `json:"intent"`
	PurchaseUnits []purchaseUnitPayload `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Status string        `json:"status"`
				Amount amountPayload `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// CreateOrder opens a CAPTURE-intent order for the given amount. The returned
// ID is handed to the storefront so the buyer can approve the payment.
func (c *Client) CreateOrder(ctx context.Context, referenceID string, amountCents int) (*OrderResult, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitPayload{{
			ReferenceID: referenceID,
			Amount: amountPayload{
				CurrencyCode: c.currency,
				Value:        centsToValue(amountCents),
			},
		}},
	}
	var resp orderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp); err != nil {
		return nil, err
	}
	return resultFromResponse(resp), nil
}

// CaptureOrder captures an approved PayPal order and reports the settled amount.
func (c *Client) CaptureOrder(ctx context.Context, paypalOrderID string) (*OrderResult, error) {
	id := strings.TrimSpace(paypalOrderID)
	if id == "" {
		return nil, errors.New("paypal order id is required")
	}
	var resp orderResponse
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", id)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return resultFromResponse(resp), nil
}

func resultFromResponse(resp orderResponse) *OrderResult {
	out := &OrderResult{
		ID:         resp.ID,
		Status:     resp.Status,
		PayerEmail: resp.Payer.EmailAddress,
	}
	for _, unit := range resp.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			if capture.Status == CaptureStatusCompleted {
				out.CapturedCents += valueToCents(capture.Amount.Value)
			}
		}
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding paypal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading paypal response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if unmarshalErr := json.Unmarshal(raw, &apiErr); unmarshalErr == nil && apiErr.Name != "" {
			return fmt.Errorf("paypal %s: %s (%s)", apiErr.Name, apiErr.Message, resp.Status)
		}
		return fmt.Errorf("paypal request failed: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding paypal response: %w", err)
	}
	return nil
}

func (c *Client) accessTokenLocked(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"),
	)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token request failed: %s", resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decoding paypal token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("paypal token response missing access_token")
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.accessToken, nil
}

func centsToValue(cents int) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func valueToCents(value string) int {
	parts := strings.SplitN(strings.TrimSpace(value), ".", 2)
	whole := 0
	fmt.Sscanf(parts[0], "%d", &whole)
	cents := whole * 100
	if len(parts) == 2 {
		frac := parts[1]
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f := 0
		fmt.Sscanf(frac, "%d", &f)
		cents += f
	}
	return cents
}
