package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePriceRuleRequest struct {
	Name          string           `json:"name" validate:"required,min=2"`
	Scope         string           `json:"scope" validate:"required,oneof=region store"`
	ScopeValue    string           `json:"scope_value" validate:"required"`
	PricingMethod string           `json:"pricing_method" validate:"required,oneof=fixed cost_plus competitor_index"`
	MarginMin     *decimal.Decimal `json:"margin_min"`
	MarginMax     *decimal.Decimal `json:"margin_max"`
	StartDate     string           `json:"start_date" validate:"required"` // RFC 3339 date
	EndDate       *string          `json:"end_date"`
	Priority      string           `json:"priority" validate:"omitempty,oneof=high medium low"`
}

type PriceRuleFilter struct {
	Scope  string `form:"scope"`
	Status string `form:"status"`
	Method string `form:"method"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PriceRuleResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Scope         string           `json:"scope"`
	ScopeValue    string           `json:"scope_value"`
	PricingMethod string           `json:"pricing_method"`
	MarginMin     *decimal.Decimal `json:"margin_min,omitempty"`
	MarginMax     *decimal.Decimal `json:"margin_max,omitempty"`
	StartDate     string           `json:"start_date"`
	EndDate       *string          `json:"end_date,omitempty"`
	Priority      string           `json:"priority"`
	Status        string           `json:"status"`
	CreatedAt     string           `json:"created_at"`
}

type PriceRuleListResponse struct {
	Data  []PriceRuleResponse `json:"data"`
	Total int                 `json:"total"`
}
