package service

import (
	"math"

	"github.com/gustavo180591/ecommerce-zapatillas/config"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
)

// PricedLine is the input to totals computation: a frozen unit price and a
// quantity. Order items and priced cart items both reduce to this.
type PricedLine struct {
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Totals is the full monetary breakdown of an order.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// TotalsPolicy holds the fixed pricing rules. Values come from
// configuration, never per-call parameters, so every call site computes
// the same way.
type TotalsPolicy struct {
	Currency              string
	TaxRate               float64
	FreeShippingThreshold float64
	ShippingFlatFee       float64
}

func NewTotalsPolicy(cfg config.PricingConfig) TotalsPolicy {
	return TotalsPolicy{
		Currency:              cfg.Currency,
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFlatFee:       cfg.ShippingFlatFee,
	}
}

// ComputeTotals derives subtotal, tax, shipping and grand total from a
// line set. It is the single place order arithmetic lives; callers always
// recompute from the full line set instead of patching a stored total.
// Rounding to the currency's minor unit happens once per figure at the
// end, so the result is identical under any permutation of lines.
func (p TotalsPolicy) ComputeTotals(lines []PricedLine) Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}

	tax := subtotal * p.TaxRate

	shipping := p.ShippingFlatFee
	if subtotal > p.FreeShippingThreshold {
		shipping = 0
	}

	subtotal = roundMinorUnit(subtotal)
	tax = roundMinorUnit(tax)
	shipping = roundMinorUnit(shipping)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    roundMinorUnit(subtotal + tax + shipping),
		Currency: p.Currency,
	}
}

// ComputeOrderTotals is the order-item form of ComputeTotals.
func (p TotalsPolicy) ComputeOrderTotals(items []model.OrderItem) Totals {
	lines := make([]PricedLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, PricedLine{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return p.ComputeTotals(lines)
}

func roundMinorUnit(v float64) float64 {
	return math.Round(v*100) / 100
}
