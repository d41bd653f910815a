package worker_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── SkuRepository stub ───────────────────────────────────────────────────────

type stubSkuRepo struct {
	skus map[uuid.UUID]*model.Sku
}

func newStubSkuRepo() *stubSkuRepo {
	return &stubSkuRepo{skus: make(map[uuid.UUID]*model.Sku)}
}

func (r *stubSkuRepo) Create(_ context.Context, s *model.Sku) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.skus[s.ID] = s
	return nil
}

func (r *stubSkuRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sku, error) {
	s, ok := r.skus[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSkuRepo) FindByCode(_ context.Context, code string) (*model.Sku, error) {
	for _, s := range r.skus {
		if s.Code == code && s.Active {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSkuRepo) List(_ context.Context, filter dto.SkuFilter) ([]model.Sku, int64, error) {
	var result []model.Sku
	for _, s := range r.skus {
		if !s.Active {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, int64(len(result)), nil
}

func (r *stubSkuRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Sku, error) {
	var result []model.Sku
	for _, id := range ids {
		if s, ok := r.skus[id]; ok && s.Active {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *stubSkuRepo) ListByStatus(_ context.Context, statuses []string) ([]model.Sku, error) {
	wanted := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}
	var result []model.Sku
	for _, s := range r.skus {
		if s.Active && wanted[s.MarginStatus] {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *stubSkuRepo) UpdatePricesTx(_ *gorm.DB, id uuid.UUID, selling, base, margin decimal.Decimal, status string) error {
	s, ok := r.skus[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.SellingPrice = selling
	s.BasePrice = base
	s.MarginPct = margin
	s.MarginStatus = status
	return nil
}

func (r *stubSkuRepo) UpdateCompetitorAvg(_ context.Context, id uuid.UUID, avg decimal.Decimal) error {
	s, ok := r.skus[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.CompetitorAvg = &avg
	return nil
}

func (r *stubSkuRepo) DB() *gorm.DB { return nil }

var _ repository.SkuRepository = (*stubSkuRepo)(nil)

// ── PriceRuleRepository stub ─────────────────────────────────────────────────

type stubRuleRepo struct {
	rules map[uuid.UUID]*model.PriceRule
}

func newStubRuleRepo() *stubRuleRepo {
	return &stubRuleRepo{rules: make(map[uuid.UUID]*model.PriceRule)}
}

func (r *stubRuleRepo) Create(_ context.Context, rule *model.PriceRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	r.rules[rule.ID] = rule
	return nil
}

func (r *stubRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PriceRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rule, nil
}

func (r *stubRuleRepo) List(_ context.Context, _ dto.PriceRuleFilter) ([]model.PriceRule, error) {
	var result []model.PriceRule
	for _, rule := range r.rules {
		result = append(result, *rule)
	}
	return result, nil
}

func (r *stubRuleRepo) ListActive(_ context.Context, now time.Time) ([]model.PriceRule, error) {
	var result []model.PriceRule
	for _, rule := range r.rules {
		if rule.Status != model.RuleActive || rule.StartDate.After(now) {
			continue
		}
		if rule.EndDate != nil && rule.EndDate.Before(now) {
			continue
		}
		result = append(result, *rule)
	}
	return result, nil
}

func (r *stubRuleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	rule, ok := r.rules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rule.Status = status
	return nil
}

var _ repository.PriceRuleRepository = (*stubRuleRepo)(nil)

// ── PendingUpdateRepository stub ─────────────────────────────────────────────

type stubPendingRepo struct {
	updates map[uuid.UUID]*model.PendingUpdate
	order   []uuid.UUID
}

func newStubPendingRepo() *stubPendingRepo {
	return &stubPendingRepo{updates: make(map[uuid.UUID]*model.PendingUpdate)}
}

func (r *stubPendingRepo) Create(_ context.Context, p *model.PendingUpdate) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.updates[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *stubPendingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PendingUpdate, error) {
	p, ok := r.updates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPendingRepo) ListPending(_ context.Context, filter dto.PendingFilter) ([]model.PendingUpdate, error) {
	var result []model.PendingUpdate
	for _, id := range r.order {
		p := r.updates[id]
		if p.Status != model.PendingStatusPending {
			continue
		}
		if filter.Source != "" && p.Source != filter.Source {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (r *stubPendingRepo) Transition(_ context.Context, id uuid.UUID, toStatus, resolvedBy string, reason *string) (int64, error) {
	p, ok := r.updates[id]
	if !ok || p.Status != model.PendingStatusPending {
		return 0, nil
	}
	now := time.Now()
	p.Status = toStatus
	p.ResolvedBy = &resolvedBy
	p.ResolvedAt = &now
	if reason != nil {
		p.Reason = reason
	}
	return 1, nil
}

func (r *stubPendingRepo) Revert(_ context.Context, id uuid.UUID) error {
	p, ok := r.updates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = model.PendingStatusPending
	p.ResolvedBy = nil
	p.ResolvedAt = nil
	return nil
}

var _ repository.PendingUpdateRepository = (*stubPendingRepo)(nil)

// ── PriceChangeRepository stub ───────────────────────────────────────────────

type stubChangeRepo struct {
	rows []*model.PriceChange
}

func newStubChangeRepo() *stubChangeRepo { return &stubChangeRepo{} }

func (r *stubChangeRepo) CreateTx(_ *gorm.DB, c *model.PriceChange) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.rows = append(r.rows, c)
	return nil
}

func (r *stubChangeRepo) ListBySku(_ context.Context, skuID uuid.UUID, _, _ int) ([]model.PriceChange, int64, error) {
	var result []model.PriceChange
	for _, c := range r.rows {
		if c.SkuID == skuID {
			result = append(result, *c)
		}
	}
	return result, int64(len(result)), nil
}

var _ repository.PriceChangeRepository = (*stubChangeRepo)(nil)
