package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ApplyPriceRequest struct {
	// Pointer so an explicit zero price survives binding; presence is
	// checked in the service, not by the validator.
	SellingPrice *decimal.Decimal `json:"selling_price"`
	BasePrice    *decimal.Decimal `json:"base_price"`
	Source       string           `json:"source" validate:"omitempty,oneof=manual bulk approval"`
}

type SkuFilter struct {
	Code     string `form:"code"`
	Name     string `form:"name"`
	Category string `form:"category"`
	Status   string `form:"status"` // healthy | warning | critical | "" (all)
	Active   string `form:"active"` // "false" | "all" | "" (active only)
	Page     int    `form:"page,default=1"  validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SkuResponse struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Cost          decimal.Decimal  `json:"cost"`
	BasePrice     decimal.Decimal  `json:"base_price"`
	SellingPrice  decimal.Decimal  `json:"selling_price"`
	CompetitorAvg *decimal.Decimal `json:"competitor_avg,omitempty"`
	MarginPct     decimal.Decimal  `json:"margin_pct"`
	MarginStatus  string           `json:"margin_status"`
	Active        bool             `json:"active"`
	UpdatedAt     string           `json:"updated_at"`
}

// PriceCheckResponse is the public, read-only price lookup payload.
// It deliberately omits cost and margin — those never leave the
// authenticated surface.
type PriceCheckResponse struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	BasePrice    decimal.Decimal `json:"base_price"`
}

type SkuListResponse struct {
	Data  []SkuResponse `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// MarginRiskItem is one row of the risk review worklist.
type MarginRiskItem struct {
	SkuResponse
	// Urgent splits the worklist: margin < 5 sorts ahead of the rest.
	// Display-only — the authoritative status is MarginStatus.
	Urgent bool `json:"urgent"`
}

type MarginRiskResponse struct {
	Urgent []MarginRiskItem `json:"urgent"`
	Other  []MarginRiskItem `json:"other"`
	Total  int              `json:"total"`
}
