package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ProposeUpdateRequest struct {
	SkuID string `json:"sku_id" validate:"required,uuid"`
	// Pointer so an explicit zero price survives binding; presence is
	// checked in the service, not by the validator.
	NewPrice *decimal.Decimal `json:"new_price"`
	Source   string           `json:"source" validate:"required,oneof=manual rule campaign"`
	Priority string           `json:"priority" validate:"omitempty,oneof=high medium low"`
	Reason   *string          `json:"reason"`
}

type RejectUpdateRequest struct {
	Reason string `json:"reason" validate:"required,min=1"`
}

type PendingFilter struct {
	Source      string `form:"source"`
	Priority    string `form:"priority"`
	RequestedBy string `form:"requested_by"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PendingUpdateResponse struct {
	ID       string          `json:"id"`
	SkuID    string          `json:"sku_id"`
	SkuCode  string          `json:"sku_code,omitempty"`
	SkuName  string          `json:"sku_name,omitempty"`
	OldPrice decimal.Decimal `json:"old_price"`
	NewPrice decimal.Decimal `json:"new_price"`
	// MarginImpact carries an explicit sign, e.g. "+2.50" / "-3.75".
	MarginImpact string  `json:"margin_impact"`
	Source       string  `json:"source"`
	Priority     string  `json:"priority"`
	RequestedBy  string  `json:"requested_by"`
	Reason       *string `json:"reason,omitempty"`
	Status       string  `json:"status"`
	ResolvedBy   *string `json:"resolved_by,omitempty"`
	ResolvedAt   *string `json:"resolved_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type PendingListResponse struct {
	Data  []PendingUpdateResponse `json:"data"`
	Total int                     `json:"total"`
}
