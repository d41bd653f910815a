package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
)

// PriceRuleRepository stores durable rule definitions. Rules are never
// hard-deleted — expiry is a status transition.
type PriceRuleRepository interface {
	Create(ctx context.Context, r *model.PriceRule) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PriceRule, error)
	List(ctx context.Context, filter dto.PriceRuleFilter) ([]model.PriceRule, error)
	// ListActive returns active rules whose schedule covers now.
	ListActive(ctx context.Context, now time.Time) ([]model.PriceRule, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type priceRuleRepo struct{ db *gorm.DB }

func NewPriceRuleRepository(db *gorm.DB) PriceRuleRepository {
	return &priceRuleRepo{db: db}
}

func (r *priceRuleRepo) Create(ctx context.Context, rule *model.PriceRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *priceRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceRule, error) {
	var rule model.PriceRule
	err := r.db.WithContext(ctx).First(&rule, id).Error
	return &rule, err
}

func (r *priceRuleRepo) List(ctx context.Context, filter dto.PriceRuleFilter) ([]model.PriceRule, error) {
	var rules []model.PriceRule

	q := r.db.WithContext(ctx).Model(&model.PriceRule{})
	if filter.Scope != "" {
		q = q.Where("scope = ?", filter.Scope)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		q = q.Where("pricing_method = ?", filter.Method)
	}

	err := q.Order("created_at DESC").Find(&rules).Error
	return rules, err
}

func (r *priceRuleRepo) ListActive(ctx context.Context, now time.Time) ([]model.PriceRule, error) {
	var rules []model.PriceRule
	err := r.db.WithContext(ctx).
		Where("status = ?", model.RuleActive).
		Where("start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *priceRuleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.PriceRule{}).
		Where("id = ?", id).
		Update("status", status).Error
}
