package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/pricing"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"
)

// ruleEvalRequestedBy stamps pending updates produced by rule evaluation.
const ruleEvalRequestedBy = "rule-engine"

// RuleEvalWorker turns active, in-window price rules into pending updates.
// The registry itself never evaluates — this worker is the scheduler side
// of that contract. Every candidate goes through the approval workflow;
// evaluation never writes the ledger directly.
type RuleEvalWorker struct {
	ruleRepo repository.PriceRuleRepository
	skuRepo  repository.SkuRepository
	workflow service.PendingUpdateWorkflow
}

func NewRuleEvalWorker(ruleRepo repository.PriceRuleRepository, skuRepo repository.SkuRepository, workflow service.PendingUpdateWorkflow) *RuleEvalWorker {
	return &RuleEvalWorker{ruleRepo: ruleRepo, skuRepo: skuRepo, workflow: workflow}
}

func (w *RuleEvalWorker) Process(ctx context.Context, payload RuleEvalPayload) error {
	now := time.Now()

	var rules []model.PriceRule
	if payload.RuleID != "" {
		id, err := uuid.Parse(payload.RuleID)
		if err != nil {
			return fmt.Errorf("rule-eval: invalid rule id %q", payload.RuleID)
		}
		rule, err := w.ruleRepo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("rule-eval: rule %s not found", id)
		}
		if !ruleInWindow(rule, now) {
			log.Warn().Str("rule_id", payload.RuleID).Str("status", rule.Status).
				Msg("rule-eval: rule not active or outside its schedule, skipping")
			return nil
		}
		rules = []model.PriceRule{*rule}
	} else {
		var err error
		rules, err = w.ruleRepo.ListActive(ctx, now)
		if err != nil {
			return err
		}
	}
	if len(rules) == 0 {
		return nil
	}

	// Evaluate high-priority rules first so their proposals land at the top
	// of the worklist. The labels do not sort correctly as strings.
	sort.SliceStable(rules, func(i, j int) bool {
		return model.PriorityRank(rules[i].Priority) < model.PriorityRank(rules[j].Priority)
	})

	skus, _, err := w.skuRepo.List(ctx, dto.SkuFilter{Page: 1, Limit: 10000})
	if err != nil {
		return err
	}

	// Existing pending proposals from rule evaluation, so a re-run does not
	// stack duplicates onto the worklist.
	open, err := w.workflow.List(ctx, dto.PendingFilter{Source: model.SourceRule})
	if err != nil {
		return err
	}
	alreadyProposed := make(map[string]bool, len(open.Data))
	for _, p := range open.Data {
		alreadyProposed[p.SkuID+"|"+p.NewPrice.String()] = true
	}

	proposed, skipped := 0, 0
	for ri := range rules {
		rule := &rules[ri]
		for si := range skus {
			sku := &skus[si]

			candidate, err := candidateForRule(rule, sku)
			if err != nil {
				if errors.Is(err, pricing.ErrInvalidParameter) || errors.Is(err, pricing.ErrInvalidPrice) {
					skipped++
					continue
				}
				return err
			}

			// No-op candidates and out-of-bounds margins are dropped.
			if candidate.Equal(sku.SellingPrice) {
				continue
			}
			margin, _ := pricing.ClassifyPrice(candidate, pricing.EffectiveCost(sku))
			if rule.MarginMin != nil && margin.LessThan(*rule.MarginMin) {
				skipped++
				continue
			}
			if rule.MarginMax != nil && margin.GreaterThan(*rule.MarginMax) {
				skipped++
				continue
			}
			if alreadyProposed[sku.ID.String()+"|"+candidate.String()] {
				continue
			}

			reason := fmt.Sprintf("rule %q (%s/%s)", rule.Name, rule.Scope, rule.ScopeValue)
			if _, err := w.workflow.Propose(ctx, dto.ProposeUpdateRequest{
				SkuID:    sku.ID.String(),
				NewPrice: &candidate,
				Source:   model.SourceRule,
				Priority: rule.Priority,
				Reason:   &reason,
			}, ruleEvalRequestedBy); err != nil {
				if errors.Is(err, pricing.ErrInvalidPrice) || errors.Is(err, pricing.ErrInvalidParameter) {
					skipped++
					continue
				}
				return err
			}
			alreadyProposed[sku.ID.String()+"|"+candidate.String()] = true
			proposed++
		}
	}

	log.Info().Int("rules", len(rules)).Int("proposed", proposed).Int("skipped", skipped).
		Msg("rule evaluation finished")
	return nil
}

func ruleInWindow(rule *model.PriceRule, now time.Time) bool {
	if rule.Status != model.RuleActive || rule.StartDate.After(now) {
		return false
	}
	return rule.EndDate == nil || !rule.EndDate.Before(now)
}

// candidateForRule maps a rule's pricing method onto the strategy family:
// fixed reprices to the base price, cost_plus targets the rule's margin
// floor, competitor_index matches the competitor average.
func candidateForRule(rule *model.PriceRule, sku *model.Sku) (decimal.Decimal, error) {
	switch rule.PricingMethod {
	case model.MethodFixed:
		if sku.BasePrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: sku %s has no base price", pricing.ErrInvalidParameter, sku.Code)
		}
		return sku.BasePrice.Round(2), nil
	case model.MethodCostPlus:
		if rule.MarginMin == nil {
			return decimal.Zero, fmt.Errorf("%w: cost_plus rule %q has no margin floor", pricing.ErrInvalidParameter, rule.Name)
		}
		return pricing.TargetMargin{TargetPct: *rule.MarginMin}.Compute(sku)
	case model.MethodCompetitorIndex:
		return pricing.CompetitorAligned{Mode: pricing.ModeMatch}.Compute(sku)
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown pricing method %q", pricing.ErrInvalidParameter, rule.PricingMethod)
	}
}
