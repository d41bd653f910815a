package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/pricing"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
)

// PendingUpdateWorkflow governs a proposed price change from creation to
// approval or rejection. pending → approved|rejected, terminal, exactly once:
// the transition is a DB-level compare-and-set on status, so two concurrent
// approvals cannot both write the ledger — the loser gets ErrAlreadyResolved.
type PendingUpdateWorkflow interface {
	Propose(ctx context.Context, req dto.ProposeUpdateRequest, requestedBy string) (*dto.PendingUpdateResponse, error)
	List(ctx context.Context, filter dto.PendingFilter) (*dto.PendingListResponse, error)
	Approve(ctx context.Context, id uuid.UUID, approvedBy string) (*dto.PendingUpdateResponse, error)
	Reject(ctx context.Context, id uuid.UUID, reason, rejectedBy string) (*dto.PendingUpdateResponse, error)
}

type pendingUpdateWorkflow struct {
	repo    repository.PendingUpdateRepository
	skuRepo repository.SkuRepository
	ledger  SkuLedger
}

func NewPendingUpdateWorkflow(repo repository.PendingUpdateRepository, skuRepo repository.SkuRepository, ledger SkuLedger) PendingUpdateWorkflow {
	return &pendingUpdateWorkflow{repo: repo, skuRepo: skuRepo, ledger: ledger}
}

func (s *pendingUpdateWorkflow) Propose(ctx context.Context, req dto.ProposeUpdateRequest, requestedBy string) (*dto.PendingUpdateResponse, error) {
	skuID, err := uuid.Parse(req.SkuID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sku id %q", pricing.ErrInvalidParameter, req.SkuID)
	}
	if req.NewPrice == nil {
		return nil, fmt.Errorf("%w: new_price is required", pricing.ErrInvalidParameter)
	}
	if req.NewPrice.IsNegative() {
		return nil, fmt.Errorf("%w: proposed price must be >= 0", pricing.ErrInvalidPrice)
	}

	sku, err := s.skuRepo.FindByID(ctx, skuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sku %s", pricing.ErrNotFound, skuID)
		}
		return nil, err
	}

	newPrice := req.NewPrice.Round(2)
	newMargin, _ := pricing.ClassifyPrice(newPrice, pricing.EffectiveCost(sku))

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	update := &model.PendingUpdate{
		SkuID:        sku.ID,
		OldPrice:     sku.SellingPrice,
		NewPrice:     newPrice,
		MarginImpact: newMargin.Sub(sku.MarginPct).Round(2),
		Source:       req.Source,
		Priority:     priority,
		RequestedBy:  requestedBy,
		Reason:       req.Reason,
		Status:       model.PendingStatusPending,
	}
	if err := s.repo.Create(ctx, update); err != nil {
		return nil, err
	}
	update.Sku = sku
	return pendingToResponse(update), nil
}

func (s *pendingUpdateWorkflow) List(ctx context.Context, filter dto.PendingFilter) (*dto.PendingListResponse, error) {
	updates, err := s.repo.ListPending(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PendingUpdateResponse, 0, len(updates))
	for i := range updates {
		items = append(items, *pendingToResponse(&updates[i]))
	}
	return &dto.PendingListResponse{Data: items, Total: len(items)}, nil
}

func (s *pendingUpdateWorkflow) Approve(ctx context.Context, id uuid.UUID, approvedBy string) (*dto.PendingUpdateResponse, error) {
	// Claim the record first. Winning the CAS guarantees we are the only
	// caller that will write the ledger for this update.
	rows, err := s.repo.Transition(ctx, id, model.PendingStatusApproved, approvedBy, nil)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.resolveConflict(ctx, id)
	}

	update, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.ApplyPrice(ctx, update.SkuID, dto.ApplyPriceRequest{
		SellingPrice: &update.NewPrice,
		Source:       "approval",
	}); err != nil {
		// The claim succeeded but the ledger write failed — hand the record
		// back to the worklist so the approval can be retried.
		if revertErr := s.repo.Revert(ctx, id); revertErr != nil {
			log.Error().Str("pending_update_id", id.String()).Err(revertErr).
				Msg("failed to revert pending update after ledger error")
		}
		return nil, err
	}
	return pendingToResponse(update), nil
}

func (s *pendingUpdateWorkflow) Reject(ctx context.Context, id uuid.UUID, reason, rejectedBy string) (*dto.PendingUpdateResponse, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", pricing.ErrInvalidParameter)
	}

	rows, err := s.repo.Transition(ctx, id, model.PendingStatusRejected, rejectedBy, &reason)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.resolveConflict(ctx, id)
	}

	update, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return pendingToResponse(update), nil
}

// resolveConflict disambiguates a zero-row transition: the record either
// does not exist or was already resolved by another caller.
func (s *pendingUpdateWorkflow) resolveConflict(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: pending update %s", pricing.ErrNotFound, id)
		}
		return err
	}
	return fmt.Errorf("%w: pending update %s", pricing.ErrAlreadyResolved, id)
}

func pendingToResponse(p *model.PendingUpdate) *dto.PendingUpdateResponse {
	resp := &dto.PendingUpdateResponse{
		ID:           p.ID.String(),
		SkuID:        p.SkuID.String(),
		OldPrice:     p.OldPrice,
		NewPrice:     p.NewPrice,
		MarginImpact: formatSigned(p.MarginImpact),
		Source:       p.Source,
		Priority:     p.Priority,
		RequestedBy:  p.RequestedBy,
		Reason:       p.Reason,
		Status:       p.Status,
		ResolvedBy:   p.ResolvedBy,
		CreatedAt:    p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if p.Sku != nil {
		resp.SkuCode = p.Sku.Code
		resp.SkuName = p.Sku.Name
	}
	if p.ResolvedAt != nil {
		t := p.ResolvedAt.Format("2006-01-02T15:04:05Z")
		resp.ResolvedAt = &t
	}
	return resp
}

// formatSigned renders a margin delta with an explicit sign: "+2.50" / "-3.75".
func formatSigned(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}
