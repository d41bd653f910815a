package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
)

// Adjustment kinds.
const (
	KindFlat              = "flat"
	KindTargetMargin      = "target_margin"
	KindCompetitorAligned = "competitor_aligned"
)

// Flat adjustment directions and units.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"

	UnitPercent = "percent"
	UnitAmount  = "amount"
)

// Competitor alignment modes.
const (
	ModeMatch = "match"
	ModeBeat  = "beat"
)

// Adjustment is one concrete rule for computing a candidate selling price
// from a SKU's current state. Implementations are a closed set: Flat,
// TargetMargin and CompetitorAligned. Compute validates its own parameters
// against the given SKU and returns ErrInvalidParameter / ErrInvalidPrice
// on domain violations; results are always rounded to 2 decimals.
type Adjustment interface {
	Kind() string
	Compute(sku *model.Sku) (decimal.Decimal, error)
}

// ── Flat ─────────────────────────────────────────────────────────────────────

// Flat moves the selling price up or down by a fixed amount or a percentage
// of the current selling price. Repeated application compounds — it is NOT
// idempotent under retry.
type Flat struct {
	Direction string
	Unit      string
	Value     decimal.Decimal
}

func (Flat) Kind() string { return KindFlat }

func (a Flat) Compute(sku *model.Sku) (decimal.Decimal, error) {
	if !a.Value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: flat adjustment value must be > 0", ErrInvalidParameter)
	}
	var delta decimal.Decimal
	switch a.Unit {
	case UnitPercent:
		delta = sku.SellingPrice.Mul(a.Value).Div(hundred)
	case UnitAmount:
		delta = a.Value
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown unit %q", ErrInvalidParameter, a.Unit)
	}

	var candidate decimal.Decimal
	switch a.Direction {
	case DirectionIncrease:
		candidate = sku.SellingPrice.Add(delta)
	case DirectionDecrease:
		candidate = sku.SellingPrice.Sub(delta)
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown direction %q", ErrInvalidParameter, a.Direction)
	}

	if candidate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: adjustment drives price below zero", ErrInvalidPrice)
	}
	return candidate.Round(2), nil
}

// ── TargetMargin ─────────────────────────────────────────────────────────────

// TargetMargin reprices to hit an exact margin percentage from the SKU's
// current cost: price = cost / (1 - target/100). Converges — applying the
// same batch twice leaves prices unchanged.
type TargetMargin struct {
	TargetPct decimal.Decimal
}

func (TargetMargin) Kind() string { return KindTargetMargin }

func (a TargetMargin) Compute(sku *model.Sku) (decimal.Decimal, error) {
	// Open interval (0, 100): the division degenerates at 100 and a
	// non-positive target is meaningless.
	if !a.TargetPct.IsPositive() || a.TargetPct.GreaterThanOrEqual(hundred) {
		return decimal.Zero, fmt.Errorf("%w: target margin must be in (0, 100), got %s", ErrInvalidParameter, a.TargetPct)
	}
	if !sku.Cost.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: sku %s has no known cost", ErrInvalidParameter, sku.Code)
	}
	denom := decimal.NewFromInt(1).Sub(a.TargetPct.Div(hundred))
	return sku.Cost.Div(denom).Round(2), nil
}

// ── CompetitorAligned ────────────────────────────────────────────────────────

// CompetitorAligned reprices relative to the competitor average: "match"
// copies it, "beat" undercuts it by OffsetPct. Converges under retry.
type CompetitorAligned struct {
	Mode      string
	OffsetPct decimal.Decimal
}

func (CompetitorAligned) Kind() string { return KindCompetitorAligned }

func (a CompetitorAligned) Compute(sku *model.Sku) (decimal.Decimal, error) {
	if sku.CompetitorAvg == nil || !sku.CompetitorAvg.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: sku %s has no competitor average", ErrInvalidParameter, sku.Code)
	}
	avg := *sku.CompetitorAvg

	switch a.Mode {
	case ModeMatch:
		return avg.Round(2), nil
	case ModeBeat:
		if a.OffsetPct.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: offset must be >= 0", ErrInvalidParameter)
		}
		candidate := avg.Mul(decimal.NewFromInt(1).Sub(a.OffsetPct.Div(hundred)))
		if candidate.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: offset drives price below zero", ErrInvalidPrice)
		}
		return candidate.Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, a.Mode)
	}
}
