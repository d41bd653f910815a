package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingUpdate status values. pending is the only non-terminal state.
const (
	PendingStatusPending  = "pending"
	PendingStatusApproved = "approved"
	PendingStatusRejected = "rejected"
)

// PendingUpdate sources.
const (
	SourceManual   = "manual"
	SourceRule     = "rule"
	SourceCampaign = "campaign"
)

// PendingUpdate is one proposed price change awaiting review. Once resolved
// (approved or rejected) the record is immutable and drops out of the active
// worklist, but is retained for audit.
type PendingUpdate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SkuID    uuid.UUID `gorm:"type:uuid;not null;index"`
	OldPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MarginImpact is the signed margin delta (new margin - current margin)
	// in percentage points.
	MarginImpact decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Source       string          `gorm:"not null;index"` // manual | rule | campaign
	Priority     string          `gorm:"not null;default:'medium';index"`
	RequestedBy  string          `gorm:"not null;index"`
	Reason       *string
	Status       string `gorm:"not null;default:'pending';index"`
	ResolvedBy   *string
	ResolvedAt   *time.Time
	CreatedAt    time.Time

	Sku *Sku `gorm:"foreignKey:SkuID"`
}
