package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Margin status values. MarginStatus is derived from MarginPct and written
// exclusively by the ledger service — no other component sets it.
const (
	MarginHealthy  = "healthy"
	MarginWarning  = "warning"
	MarginCritical = "critical"
)

// Sku is the authoritative pricing record for one catalog item.
// Catalog onboarding creates rows; this engine only ever mutates prices
// (and the derived margin fields) through the ledger — never deletes.
type Sku struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code     string    `gorm:"uniqueIndex;not null"`
	Name     string    `gorm:"index;not null"`
	Category string    `gorm:"index"`
	// Cost may be zero when onboarding did not capture it; the ledger then
	// reconstructs it from the previously known margin on re-pricing.
	Cost          decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	BasePrice     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	SellingPrice  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CompetitorAvg *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// MarginPct is derived from (SellingPrice - Cost) / SellingPrice * 100.
	MarginPct    decimal.Decimal `gorm:"type:decimal(6,2)"`
	MarginStatus string          `gorm:"not null;default:'healthy';index"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
