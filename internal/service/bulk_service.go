package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/pricing"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
)

// BulkExecutor applies one adjustment strategy across many SKUs in a single
// logical batch. Invalid items are skipped with a reason and the batch keeps
// going — one bad SKU never aborts the rest. Candidates are always computed
// from each SKU's current stored price, never a cached snapshot, so flat and
// percentage adjustments compound under retry while target-margin and
// competitor alignment converge.
type BulkExecutor interface {
	Execute(ctx context.Context, req dto.BulkAdjustmentRequest, requestedBy string) (*dto.BulkOperationResponse, error)
}

type bulkExecutor struct {
	skuRepo  repository.SkuRepository
	ledger   SkuLedger
	workflow PendingUpdateWorkflow
}

func NewBulkExecutor(skuRepo repository.SkuRepository, ledger SkuLedger, workflow PendingUpdateWorkflow) BulkExecutor {
	return &bulkExecutor{skuRepo: skuRepo, ledger: ledger, workflow: workflow}
}

// adjustmentFromRequest maps the tagged request onto exactly one strategy
// variant. The set is closed — an unknown kind is a batch-level error, not
// a per-item skip.
func adjustmentFromRequest(req dto.BulkAdjustmentRequest) (pricing.Adjustment, error) {
	switch req.Kind {
	case pricing.KindFlat:
		return pricing.Flat{Direction: req.Direction, Unit: req.Unit, Value: req.Value}, nil
	case pricing.KindTargetMargin:
		return pricing.TargetMargin{TargetPct: req.TargetMarginPct}, nil
	case pricing.KindCompetitorAligned:
		return pricing.CompetitorAligned{Mode: req.Mode, OffsetPct: req.OffsetPct}, nil
	default:
		return nil, fmt.Errorf("%w: unknown adjustment kind %q", pricing.ErrInvalidParameter, req.Kind)
	}
}

func (s *bulkExecutor) Execute(ctx context.Context, req dto.BulkAdjustmentRequest, requestedBy string) (*dto.BulkOperationResponse, error) {
	adj, err := adjustmentFromRequest(req)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkOperationResponse{Skipped: make([]dto.SkippedItem, 0)}

	targets, err := s.resolveTargets(ctx, req, result)
	if err != nil {
		return nil, err
	}
	result.Attempted = len(targets) + len(result.Skipped)

	for i := range targets {
		sku := &targets[i]

		candidate, err := adj.Compute(sku)
		if err != nil {
			if !isSkippable(err) {
				return nil, err
			}
			result.Skipped = append(result.Skipped, dto.SkippedItem{SkuID: sku.ID.String(), Reason: err.Error()})
			continue
		}

		if req.Preview {
			margin, status := pricing.ClassifyPrice(candidate, pricing.EffectiveCost(sku))
			result.Preview = append(result.Preview, dto.PricePreviewItem{
				SkuID:           sku.ID.String(),
				Code:            sku.Code,
				Name:            sku.Name,
				CurrentPrice:    sku.SellingPrice,
				NewPrice:        candidate,
				CurrentMargin:   sku.MarginPct,
				ProjectedMargin: margin,
				ProjectedStatus: status,
			})
			continue
		}

		if req.RequireApproval {
			pending, err := s.workflow.Propose(ctx, dto.ProposeUpdateRequest{
				SkuID:    sku.ID.String(),
				NewPrice: &candidate,
				Source:   model.SourceManual,
				Priority: req.Priority,
			}, requestedBy)
			if err != nil {
				if !isSkippable(err) {
					return nil, err
				}
				result.Skipped = append(result.Skipped, dto.SkippedItem{SkuID: sku.ID.String(), Reason: err.Error()})
				continue
			}
			result.PendingIDs = append(result.PendingIDs, pending.ID)
			result.Applied++
			continue
		}

		if _, err := s.ledger.ApplyPrice(ctx, sku.ID, dto.ApplyPriceRequest{
			SellingPrice: &candidate,
			Source:       "bulk",
		}); err != nil {
			if !isSkippable(err) {
				return nil, err
			}
			result.Skipped = append(result.Skipped, dto.SkippedItem{SkuID: sku.ID.String(), Reason: err.Error()})
			continue
		}
		result.Applied++
	}

	log.Info().
		Str("kind", adj.Kind()).
		Bool("preview", req.Preview).
		Bool("gated", req.RequireApproval).
		Int("attempted", result.Attempted).
		Int("applied", result.Applied).
		Int("skipped", len(result.Skipped)).
		Msg("bulk price operation finished")
	return result, nil
}

// resolveTargets loads the batch targets: explicit SKU ids when given,
// otherwise every active SKU in the category (or all active SKUs).
// Unparseable and unknown ids become skips, not batch failures.
func (s *bulkExecutor) resolveTargets(ctx context.Context, req dto.BulkAdjustmentRequest, result *dto.BulkOperationResponse) ([]model.Sku, error) {
	if len(req.SkuIDs) == 0 {
		skus, _, err := s.skuRepo.List(ctx, dto.SkuFilter{Category: req.Category, Page: 1, Limit: 10000})
		return skus, err
	}

	ids := make([]uuid.UUID, 0, len(req.SkuIDs))
	for _, raw := range req.SkuIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			result.Skipped = append(result.Skipped, dto.SkippedItem{SkuID: raw, Reason: "invalid sku id"})
			continue
		}
		ids = append(ids, id)
	}

	skus, err := s.skuRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[uuid.UUID]bool, len(skus))
	for _, sku := range skus {
		found[sku.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			result.Skipped = append(result.Skipped, dto.SkippedItem{SkuID: id.String(), Reason: "sku not found"})
		}
	}
	return skus, nil
}
