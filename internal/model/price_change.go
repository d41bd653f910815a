package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChange records every committed price mutation of a SKU.
// Rows are immutable — never updated or deleted.
type PriceChange struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SkuID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellingBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BaseBefore    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BaseAfter     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MarginBefore  decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	MarginAfter   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Source        string          `gorm:"not null;default:'manual'"` // manual | bulk | approval
	CreatedAt     time.Time

	Sku Sku `gorm:"foreignKey:SkuID"`
}
