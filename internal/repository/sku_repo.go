package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
)

// SkuRepository defines the data access contract for SKUs.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type SkuRepository interface {
	Create(ctx context.Context, s *model.Sku) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sku, error)
	FindByCode(ctx context.Context, code string) (*model.Sku, error)
	List(ctx context.Context, filter dto.SkuFilter) ([]model.Sku, int64, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Sku, error)
	ListByStatus(ctx context.Context, statuses []string) ([]model.Sku, error)

	// UpdatePricesTx writes selling/base price together with the derived
	// margin fields inside the caller's transaction. This is the only write
	// path for margin_pct / margin_status.
	UpdatePricesTx(tx *gorm.DB, id uuid.UUID, selling, base, margin decimal.Decimal, status string) error

	// UpdateCompetitorAvg refreshes the competitor average without touching
	// any price or margin field.
	UpdateCompetitorAvg(ctx context.Context, id uuid.UUID, avg decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type skuRepo struct{ db *gorm.DB }

func NewSkuRepository(db *gorm.DB) SkuRepository { return &skuRepo{db: db} }

func (r *skuRepo) Create(ctx context.Context, s *model.Sku) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *skuRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sku, error) {
	var s model.Sku
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *skuRepo) FindByCode(ctx context.Context, code string) (*model.Sku, error) {
	var s model.Sku
	err := r.db.WithContext(ctx).Where("code = ? AND active = true", code).First(&s).Error
	return &s, err
}

func (r *skuRepo) List(ctx context.Context, filter dto.SkuFilter) ([]model.Sku, int64, error) {
	var skus []model.Sku
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sku{})

	// Active filter: "false" = inactive, "all" = everything, default = active
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}

	if filter.Code != "" {
		q = q.Where("code = ?", filter.Code)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("margin_status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("code ASC").Limit(filter.Limit).Offset(offset).Find(&skus).Error
	return skus, total, err
}

func (r *skuRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Sku, error) {
	var skus []model.Sku
	err := r.db.WithContext(ctx).Where("id IN ? AND active = true", ids).Find(&skus).Error
	return skus, err
}

func (r *skuRepo) ListByStatus(ctx context.Context, statuses []string) ([]model.Sku, error) {
	var skus []model.Sku
	err := r.db.WithContext(ctx).
		Where("margin_status IN ? AND active = true", statuses).
		Order("margin_pct ASC").
		Find(&skus).Error
	return skus, err
}

func (r *skuRepo) UpdatePricesTx(tx *gorm.DB, id uuid.UUID, selling, base, margin decimal.Decimal, status string) error {
	return tx.Model(&model.Sku{}).Where("id = ?", id).Updates(map[string]interface{}{
		"selling_price": selling,
		"base_price":    base,
		"margin_pct":    margin,
		"margin_status": status,
	}).Error
}

func (r *skuRepo) UpdateCompetitorAvg(ctx context.Context, id uuid.UUID, avg decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Sku{}).Where("id = ?", id).
		Update("competitor_avg", avg).Error
}

func (r *skuRepo) DB() *gorm.DB { return r.db }
