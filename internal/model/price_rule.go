package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRule scope values.
const (
	RuleScopeRegion = "region"
	RuleScopeStore  = "store"
)

// PriceRule pricing methods.
const (
	MethodFixed           = "fixed"
	MethodCostPlus        = "cost_plus"
	MethodCompetitorIndex = "competitor_index"
)

// PriceRule status values.
const (
	RuleDraft   = "draft"
	RuleActive  = "active"
	RuleExpired = "expired"
)

// Priority levels shared by rules and pending updates.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityRank maps a priority label to its sort rank. The labels do not
// sort correctly as strings ("high" < "low" < "medium"), so ordering always
// goes through this rank. Unknown labels sink to the bottom.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// PriceRule is a durable rule definition evaluated later against the SKU
// ledger to produce pending updates. Immutable once active except for status
// transitions; rules are never hard-deleted (retained for audit).
type PriceRule struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"not null"`
	Scope         string    `gorm:"not null"` // region | store
	ScopeValue    string    `gorm:"not null"` // region code or store code
	PricingMethod string    `gorm:"not null"` // fixed | cost_plus | competitor_index
	MarginMin     *decimal.Decimal `gorm:"type:decimal(6,2)"`
	MarginMax     *decimal.Decimal `gorm:"type:decimal(6,2)"`
	StartDate     time.Time        `gorm:"not null"`
	EndDate       *time.Time
	Priority      string `gorm:"not null;default:'medium'"`
	Status        string `gorm:"not null;default:'draft';index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
