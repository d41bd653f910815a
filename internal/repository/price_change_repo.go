package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
)

// PriceChangeRepository records the immutable price-change audit trail.
type PriceChangeRepository interface {
	// CreateTx writes an audit row inside the caller's transaction so the
	// price update and its history entry commit atomically.
	CreateTx(tx *gorm.DB, c *model.PriceChange) error
	ListBySku(ctx context.Context, skuID uuid.UUID, page, limit int) ([]model.PriceChange, int64, error)
}

type priceChangeRepo struct{ db *gorm.DB }

func NewPriceChangeRepository(db *gorm.DB) PriceChangeRepository {
	return &priceChangeRepo{db: db}
}

func (r *priceChangeRepo) CreateTx(tx *gorm.DB, c *model.PriceChange) error {
	return tx.Create(c).Error
}

func (r *priceChangeRepo) ListBySku(ctx context.Context, skuID uuid.UUID, page, limit int) ([]model.PriceChange, int64, error) {
	var rows []model.PriceChange
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PriceChange{}).Where("sku_id = ?", skuID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}
