package dto

import "github.com/shopspring/decimal"

type PriceChangeItem struct {
	ID            string          `json:"id"`
	SkuID         string          `json:"sku_id"`
	SellingBefore decimal.Decimal `json:"selling_before"`
	SellingAfter  decimal.Decimal `json:"selling_after"`
	BaseBefore    decimal.Decimal `json:"base_before"`
	BaseAfter     decimal.Decimal `json:"base_after"`
	MarginBefore  decimal.Decimal `json:"margin_before"`
	MarginAfter   decimal.Decimal `json:"margin_after"`
	Source        string          `json:"source"`
	CreatedAt     string          `json:"created_at"`
}

type PriceChangeListResponse struct {
	Data  []PriceChangeItem `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
