package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/teoalvarez/cartline-backend/pkg/db/models"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
)

// PricingItem is the minimal line-item view the calculator needs.
type PricingItem struct {
	UnitPriceCents int
	Qty            int
}

// PricingInput feeds CalcDeliveryDateAndPrice. DeliveryIndex selects one of
// the configured delivery options; nil picks the last (slowest) option.
type PricingInput struct {
	Items           []PricingItem
	HasAddress      bool
	DeliveryOptions []models.DeliveryOption
	DeliveryIndex   *int
	TaxRatePercent  int
	Now             time.Time
}

// PricingResult carries the persisted-once pricing breakdown. Shipping and tax
// stay nil when no shipping address (or no delivery option) resolved.
type PricingResult struct {
	ItemsPriceCents    int
	ShippingPriceCents *int
	TaxPriceCents      *int
	TotalPriceCents    int
	DeliveryOption     *models.DeliveryOption
	ExpectedDeliveryAt *time.Time
}

// CalcDeliveryDateAndPrice computes the order totals exactly once at creation
// time. Callers persist the result; totals are never recomputed on read.
func CalcDeliveryDateAndPrice(input PricingInput) (*PricingResult, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	itemsPrice := 0
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
		itemsPrice += item.UnitPriceCents * item.Qty
	}

	result := &PricingResult{ItemsPriceCents: itemsPrice}

	option := selectDeliveryOption(input.DeliveryOptions, input.DeliveryIndex)
	if option != nil {
		result.DeliveryOption = option
		now := input.Now
		if now.IsZero() {
			now = time.Now()
		}
		expected := now.AddDate(0, 0, option.DaysToDeliver)
		result.ExpectedDeliveryAt = &expected
	}

	if input.HasAddress && option != nil {
		shipping := option.ShippingPriceCents
		if option.FreeShippingMinCents > 0 && itemsPrice >= option.FreeShippingMinCents {
			shipping = 0
		}
		result.ShippingPriceCents = &shipping
	}

	if input.HasAddress {
		tax := taxCents(itemsPrice, input.TaxRatePercent)
		result.TaxPriceCents = &tax
	}

	total := itemsPrice
	if result.ShippingPriceCents != nil {
		total += *result.ShippingPriceCents
	}
	if result.TaxPriceCents != nil {
		total += *result.TaxPriceCents
	}
	result.TotalPriceCents = total

	return result, nil
}

func taxCents(itemsPriceCents, ratePercent int) int {
	if ratePercent <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(ratePercent)).Div(decimal.NewFromInt(100))
	tax := decimal.NewFromInt(int64(itemsPriceCents)).Mul(rate)
	return int(tax.Round(0).IntPart())
}

func selectDeliveryOption(options []models.DeliveryOption, index *int) *models.DeliveryOption {
	if len(options) == 0 {
		return nil
	}
	i := len(options) - 1
	if index != nil && *index >= 0 && *index < len(options) {
		i = *index
	}
	option := options[i]
	return &option
}
