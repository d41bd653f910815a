package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/pricing"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
)

const riskCacheKey = "pricing:margin-risk"

// SkuLedger is the single source of truth for SKU prices. It is the only
// writer of margin_pct / margin_status — every mutation goes through
// ApplyPrice, which recomputes both via the classifier.
type SkuLedger interface {
	List(ctx context.Context, filter dto.SkuFilter) (*dto.SkuListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.SkuResponse, error)
	ApplyPrice(ctx context.Context, id uuid.UUID, req dto.ApplyPriceRequest) (*dto.SkuResponse, error)
	MarginRisk(ctx context.Context) (*dto.MarginRiskResponse, error)
}

type skuLedger struct {
	repo       repository.SkuRepository
	changeRepo repository.PriceChangeRepository
	rdb        *redis.Client
	riskTTL    time.Duration

	// locks serializes concurrent ApplyPrice calls per SKU id so the margin
	// recomputation always derives from the price actually persisted.
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewSkuLedger(repo repository.SkuRepository, changeRepo repository.PriceChangeRepository, rdb *redis.Client, riskTTL time.Duration) SkuLedger {
	return &skuLedger{repo: repo, changeRepo: changeRepo, rdb: rdb, riskTTL: riskTTL}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *skuLedger) lockSku(id uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *skuLedger) List(ctx context.Context, filter dto.SkuFilter) (*dto.SkuListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	skus, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SkuResponse, 0, len(skus))
	for _, sku := range skus {
		items = append(items, *skuToResponse(&sku))
	}
	return &dto.SkuListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *skuLedger) GetByID(ctx context.Context, id uuid.UUID) (*dto.SkuResponse, error) {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sku %s", pricing.ErrNotFound, id)
		}
		return nil, err
	}
	return skuToResponse(sku), nil
}

func (s *skuLedger) ApplyPrice(ctx context.Context, id uuid.UUID, req dto.ApplyPriceRequest) (*dto.SkuResponse, error) {
	if req.SellingPrice == nil {
		return nil, fmt.Errorf("%w: selling_price is required", pricing.ErrInvalidParameter)
	}
	if req.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: selling price must be >= 0", pricing.ErrInvalidPrice)
	}
	if req.BasePrice != nil && req.BasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: base price must be >= 0", pricing.ErrInvalidPrice)
	}

	mu := s.lockSku(id)
	mu.Lock()
	defer mu.Unlock()

	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sku %s", pricing.ErrNotFound, id)
		}
		return nil, err
	}

	newSelling := req.SellingPrice.Round(2)
	newBase := sku.BasePrice
	if req.BasePrice != nil {
		newBase = req.BasePrice.Round(2)
	}

	cost := pricing.EffectiveCost(sku)
	margin, status := pricing.ClassifyPrice(newSelling, cost)

	source := req.Source
	if source == "" {
		source = "manual"
	}

	change := &model.PriceChange{
		SkuID:         sku.ID,
		SellingBefore: sku.SellingPrice,
		SellingAfter:  newSelling,
		BaseBefore:    sku.BasePrice,
		BaseAfter:     newBase,
		MarginBefore:  sku.MarginPct,
		MarginAfter:   margin,
		Source:        source,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdatePricesTx(tx, sku.ID, newSelling, newBase, margin, status); err != nil {
			return err
		}
		return s.changeRepo.CreateTx(tx, change)
	})
	if txErr != nil {
		return nil, txErr
	}

	sku.SellingPrice = newSelling
	sku.BasePrice = newBase
	sku.MarginPct = margin
	sku.MarginStatus = status

	s.invalidateCaches(ctx, sku.Code)
	return skuToResponse(sku), nil
}

// MarginRisk returns the review worklist: SKUs already flagged warning or
// critical by the canonical classifier, split into urgent (margin < 5) and
// other. This is a display filter — it never reclassifies the stored status.
func (s *skuLedger) MarginRisk(ctx context.Context) (*dto.MarginRiskResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, riskCacheKey).Bytes(); err == nil {
			var resp dto.MarginRiskResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	skus, err := s.repo.ListByStatus(ctx, []string{model.MarginWarning, model.MarginCritical})
	if err != nil {
		return nil, err
	}

	resp := &dto.MarginRiskResponse{
		Urgent: make([]dto.MarginRiskItem, 0),
		Other:  make([]dto.MarginRiskItem, 0),
		Total:  len(skus),
	}
	for _, sku := range skus {
		item := dto.MarginRiskItem{
			SkuResponse: *skuToResponse(&sku),
			Urgent:      pricing.Urgent(sku.MarginPct),
		}
		if item.Urgent {
			resp.Urgent = append(resp.Urgent, item)
		} else {
			resp.Other = append(resp.Other, item)
		}
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(ctx, riskCacheKey, b, s.riskTTL).Err()
		}
	}
	return resp, nil
}

func (s *skuLedger) invalidateCaches(ctx context.Context, code string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, "pricing:sku:"+code, riskCacheKey).Err()
}

func skuToResponse(sku *model.Sku) *dto.SkuResponse {
	return &dto.SkuResponse{
		ID:            sku.ID.String(),
		Code:          sku.Code,
		Name:          sku.Name,
		Category:      sku.Category,
		Cost:          sku.Cost,
		BasePrice:     sku.BasePrice,
		SellingPrice:  sku.SellingPrice,
		CompetitorAvg: sku.CompetitorAvg,
		MarginPct:     sku.MarginPct,
		MarginStatus:  sku.MarginStatus,
		Active:        sku.Active,
		UpdatedAt:     sku.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// isSkippable reports whether a per-item error should skip the item instead
// of failing a whole batch operation.
func isSkippable(err error) bool {
	return errors.Is(err, pricing.ErrInvalidParameter) || errors.Is(err, pricing.ErrInvalidPrice)
}
