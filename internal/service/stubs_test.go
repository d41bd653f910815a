package service_test

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
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"
)

// ── In-memory SkuRepository stub ─────────────────────────────────────────────

type stubSkuRepo struct {
	skus map[uuid.UUID]*model.Sku
	// findErr, when set, is returned by FindByID to fake a failing database.
	findErr error
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
	if r.findErr != nil {
		return nil, r.findErr
	}
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
		if !s.Active && filter.Active != "all" && filter.Active != "false" {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Status != "" && s.MarginStatus != filter.Status {
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
	sort.Slice(result, func(i, j int) bool {
		return result[i].MarginPct.LessThan(result[j].MarginPct)
	})
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

// ── In-memory PriceChangeRepository stub ─────────────────────────────────────

type stubChangeRepo struct {
	rows []*model.PriceChange
}

func newStubChangeRepo() *stubChangeRepo { return &stubChangeRepo{} }

func (r *stubChangeRepo) CreateTx(_ *gorm.DB, c *model.PriceChange) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
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

// ── In-memory PendingUpdateRepository stub ───────────────────────────────────

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
		if filter.Priority != "" && p.Priority != filter.Priority {
			continue
		}
		if filter.RequestedBy != "" && p.RequestedBy != filter.RequestedBy {
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

// ── In-memory PriceRuleRepository stub ───────────────────────────────────────

type stubRuleRepo struct {
	rules map[uuid.UUID]*model.PriceRule
	order []uuid.UUID
}

func newStubRuleRepo() *stubRuleRepo {
	return &stubRuleRepo{rules: make(map[uuid.UUID]*model.PriceRule)}
}

func (r *stubRuleRepo) Create(_ context.Context, rule *model.PriceRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = time.Now()
	r.rules[rule.ID] = rule
	r.order = append(r.order, rule.ID)
	return nil
}

func (r *stubRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PriceRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rule, nil
}

func (r *stubRuleRepo) List(_ context.Context, filter dto.PriceRuleFilter) ([]model.PriceRule, error) {
	var result []model.PriceRule
	for _, id := range r.order {
		rule := r.rules[id]
		if filter.Scope != "" && rule.Scope != filter.Scope {
			continue
		}
		if filter.Status != "" && rule.Status != filter.Status {
			continue
		}
		if filter.Method != "" && rule.PricingMethod != filter.Method {
			continue
		}
		result = append(result, *rule)
	}
	return result, nil
}

func (r *stubRuleRepo) ListActive(_ context.Context, now time.Time) ([]model.PriceRule, error) {
	var result []model.PriceRule
	for _, id := range r.order {
		rule := r.rules[id]
		if rule.Status != model.RuleActive {
			continue
		}
		if rule.StartDate.After(now) {
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

// ── Shared helpers ───────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func seedSku(repo *stubSkuRepo, code, category, cost, selling string) *model.Sku {
	s := &model.Sku{
		ID:           uuid.New(),
		Code:         code,
		Name:         "Test " + code,
		Category:     category,
		Cost:         dec(cost),
		BasePrice:    dec(selling),
		SellingPrice: dec(selling),
		Active:       true,
	}
	if s.SellingPrice.IsPositive() {
		s.MarginPct = s.SellingPrice.Sub(s.Cost).Div(s.SellingPrice).Mul(dec("100")).Round(2)
	}
	switch {
	case s.MarginPct.LessThan(dec("10")):
		s.MarginStatus = model.MarginCritical
	case s.MarginPct.LessThan(dec("15")):
		s.MarginStatus = model.MarginWarning
	default:
		s.MarginStatus = model.MarginHealthy
	}
	repo.skus[s.ID] = s
	return s
}

func buildLedger() (service.SkuLedger, *stubSkuRepo, *stubChangeRepo) {
	skuRepo := newStubSkuRepo()
	changeRepo := newStubChangeRepo()
	ledger := service.NewSkuLedger(skuRepo, changeRepo, nil, 0)
	return ledger, skuRepo, changeRepo
}

func buildWorkflow() (service.PendingUpdateWorkflow, service.SkuLedger, *stubSkuRepo, *stubPendingRepo, *stubChangeRepo) {
	skuRepo := newStubSkuRepo()
	changeRepo := newStubChangeRepo()
	pendingRepo := newStubPendingRepo()
	ledger := service.NewSkuLedger(skuRepo, changeRepo, nil, 0)
	workflow := service.NewPendingUpdateWorkflow(pendingRepo, skuRepo, ledger)
	return workflow, ledger, skuRepo, pendingRepo, changeRepo
}

func buildBulk() (service.BulkExecutor, *stubSkuRepo, *stubPendingRepo, *stubChangeRepo) {
	skuRepo := newStubSkuRepo()
	changeRepo := newStubChangeRepo()
	pendingRepo := newStubPendingRepo()
	ledger := service.NewSkuLedger(skuRepo, changeRepo, nil, 0)
	workflow := service.NewPendingUpdateWorkflow(pendingRepo, skuRepo, ledger)
	bulk := service.NewBulkExecutor(skuRepo, ledger, workflow)
	return bulk, skuRepo, pendingRepo, changeRepo
}
