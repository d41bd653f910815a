package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// BulkAdjustmentRequest selects exactly one strategy variant via Kind and
// carries that variant's parameters. Unused parameter fields are ignored.
type BulkAdjustmentRequest struct {
	Kind string `json:"kind" validate:"required,oneof=flat target_margin competitor_aligned"`

	// flat
	Direction string          `json:"direction" validate:"omitempty,oneof=increase decrease"`
	Unit      string          `json:"unit" validate:"omitempty,oneof=percent amount"`
	Value     decimal.Decimal `json:"value"`

	// target_margin
	TargetMarginPct decimal.Decimal `json:"target_margin_pct"`

	// competitor_aligned
	Mode      string          `json:"mode" validate:"omitempty,oneof=match beat"`
	OffsetPct decimal.Decimal `json:"offset_pct"`

	// Targets: explicit SKU ids, or a category when ids are empty.
	SkuIDs   []string `json:"sku_ids"`
	Category string   `json:"category"`

	// Preview computes candidate prices without writing anything.
	Preview bool `json:"preview"`
	// RequireApproval routes candidates through the pending-update
	// workflow instead of writing the ledger directly.
	RequireApproval bool   `json:"require_approval"`
	Priority        string `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SkippedItem struct {
	SkuID  string `json:"sku_id"`
	Reason string `json:"reason"`
}

type PricePreviewItem struct {
	SkuID           string          `json:"sku_id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	NewPrice        decimal.Decimal `json:"new_price"`
	CurrentMargin   decimal.Decimal `json:"current_margin"`
	ProjectedMargin decimal.Decimal `json:"projected_margin"`
	ProjectedStatus string          `json:"projected_status"`
}

type BulkOperationResponse struct {
	Attempted int                `json:"attempted"`
	Applied   int                `json:"applied"`
	Skipped   []SkippedItem      `json:"skipped"`
	Preview   []PricePreviewItem `json:"preview,omitempty"`
	// PendingIDs holds created pending-update ids in gated mode.
	PendingIDs []string `json:"pending_ids,omitempty"`
}
