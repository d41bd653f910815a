package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
)

// PendingUpdateRepository stores proposed price changes and their
// state transitions.
type PendingUpdateRepository interface {
	Create(ctx context.Context, p *model.PendingUpdate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PendingUpdate, error)
	// ListPending returns only pending records matching the filter.
	ListPending(ctx context.Context, filter dto.PendingFilter) ([]model.PendingUpdate, error)

	// Transition atomically moves a record out of pending:
	// UPDATE ... SET status = ? WHERE id = ? AND status = 'pending'.
	// Returns the number of rows affected — 0 means another caller won the
	// race (or the id does not exist); the service disambiguates.
	Transition(ctx context.Context, id uuid.UUID, toStatus, resolvedBy string, reason *string) (int64, error)

	// Revert returns an already-claimed record to pending. Only used when a
	// ledger write fails after a successful approve transition.
	Revert(ctx context.Context, id uuid.UUID) error
}

type pendingUpdateRepo struct{ db *gorm.DB }

func NewPendingUpdateRepository(db *gorm.DB) PendingUpdateRepository {
	return &pendingUpdateRepo{db: db}
}

func (r *pendingUpdateRepo) Create(ctx context.Context, p *model.PendingUpdate) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pendingUpdateRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PendingUpdate, error) {
	var p model.PendingUpdate
	err := r.db.WithContext(ctx).Preload("Sku").First(&p, id).Error
	return &p, err
}

func (r *pendingUpdateRepo) ListPending(ctx context.Context, filter dto.PendingFilter) ([]model.PendingUpdate, error) {
	var updates []model.PendingUpdate

	q := r.db.WithContext(ctx).Preload("Sku").
		Where("status = ?", model.PendingStatusPending)

	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.RequestedBy != "" {
		q = q.Where("requested_by = ?", filter.RequestedBy)
	}

	// created_at gives a stable order without promising any presentation order.
	err := q.Order("created_at ASC").Find(&updates).Error
	return updates, err
}

func (r *pendingUpdateRepo) Transition(ctx context.Context, id uuid.UUID, toStatus, resolvedBy string, reason *string) (int64, error) {
	now := time.Now()
	values := map[string]interface{}{
		"status":      toStatus,
		"resolved_by": resolvedBy,
		"resolved_at": now,
	}
	if reason != nil {
		values["reason"] = *reason
	}
	res := r.db.WithContext(ctx).Model(&model.PendingUpdate{}).
		Where("id = ? AND status = ?", id, model.PendingStatusPending).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *pendingUpdateRepo) Revert(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PendingUpdate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.PendingStatusPending,
			"resolved_by": nil,
			"resolved_at": nil,
		}).Error
}
