// Package pricing holds the pure computation core of the engine: margin math,
// the risk classifier and the price-adjustment strategy family. Nothing in
// this package touches the database, redis or the clock; every function is
// deterministic over its inputs.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
)

// Classification thresholds (margin percentage points). Exactly 10 is
// warning, not critical; exactly 15 is healthy.
var (
	criticalBelow = decimal.NewFromInt(10)
	warningBelow  = decimal.NewFromInt(15)

	// urgentBelow is a stricter display-only cutoff used by the margin-risk
	// review to sort the worklist. It never changes a SKU's stored status.
	urgentBelow = decimal.NewFromInt(5)
)

var hundred = decimal.NewFromInt(100)

// Margin computes (selling - cost) / selling * 100, rounded to 2 decimals.
// A zero selling price has no defined margin; callers must gate on
// selling > 0 (see Classify / ClassifyPrice).
func Margin(selling, cost decimal.Decimal) decimal.Decimal {
	return selling.Sub(cost).Div(selling).Mul(hundred).Round(2)
}

// Classify maps a margin percentage onto a risk tier.
func Classify(margin decimal.Decimal) string {
	switch {
	case margin.LessThan(criticalBelow):
		return model.MarginCritical
	case margin.LessThan(warningBelow):
		return model.MarginWarning
	default:
		return model.MarginHealthy
	}
}

// ClassifyPrice derives margin and status from a selling price and cost.
// A non-positive selling price yields a zero margin and critical status —
// never a division by zero.
func ClassifyPrice(selling, cost decimal.Decimal) (decimal.Decimal, string) {
	if !selling.IsPositive() {
		return decimal.Zero, model.MarginCritical
	}
	m := Margin(selling, cost)
	return m, Classify(m)
}

// Urgent reports whether a margin belongs in the "urgent" bucket of the
// risk review (display filter on top of the canonical classification).
func Urgent(margin decimal.Decimal) bool {
	return margin.LessThan(urgentBelow)
}

// ReconstructCost recovers an implied cost from a selling price and a known
// margin: cost = selling * (1 - margin/100). Used when a SKU was onboarded
// without an explicit cost, so that re-pricing stays internally consistent.
func ReconstructCost(selling, marginPct decimal.Decimal) decimal.Decimal {
	return selling.Mul(decimal.NewFromInt(1).Sub(marginPct.Div(hundred))).Round(2)
}

// EffectiveCost returns the SKU's stored cost, or reconstructs it from the
// previously known margin when no explicit cost was captured at onboarding.
func EffectiveCost(sku *model.Sku) decimal.Decimal {
	if sku.Cost.IsPositive() {
		return sku.Cost
	}
	if sku.SellingPrice.IsPositive() && !sku.MarginPct.IsZero() {
		return ReconstructCost(sku.SellingPrice, sku.MarginPct)
	}
	return sku.Cost
}
