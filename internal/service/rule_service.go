package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/pricing"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
)

// PriceRuleRegistry stores and validates durable rule definitions. It never
// evaluates them — evaluation belongs to the worker that turns active rules
// into pending updates.
type PriceRuleRegistry interface {
	Create(ctx context.Context, req dto.CreatePriceRuleRequest) (*dto.PriceRuleResponse, error)
	List(ctx context.Context, filter dto.PriceRuleFilter) (*dto.PriceRuleListResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*dto.PriceRuleResponse, error)
	Expire(ctx context.Context, id uuid.UUID) (*dto.PriceRuleResponse, error)
}

type priceRuleRegistry struct {
	repo repository.PriceRuleRepository
}

func NewPriceRuleRegistry(repo repository.PriceRuleRepository) PriceRuleRegistry {
	return &priceRuleRegistry{repo: repo}
}

// parseRuleDate accepts RFC 3339 timestamps and bare dates.
func parseRuleDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *priceRuleRegistry) Create(ctx context.Context, req dto.CreatePriceRuleRequest) (*dto.PriceRuleResponse, error) {
	if req.MarginMin != nil && req.MarginMax != nil && req.MarginMin.GreaterThan(*req.MarginMax) {
		return nil, fmt.Errorf("%w: margin_min %s exceeds margin_max %s", pricing.ErrInvalidRule, req.MarginMin, req.MarginMax)
	}

	start, err := parseRuleDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start_date %q", pricing.ErrInvalidRule, req.StartDate)
	}

	var end *time.Time
	if req.EndDate != nil {
		parsed, err := parseRuleDate(*req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid end_date %q", pricing.ErrInvalidRule, *req.EndDate)
		}
		if start.After(parsed) {
			return nil, fmt.Errorf("%w: start_date after end_date", pricing.ErrInvalidRule)
		}
		end = &parsed
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	rule := &model.PriceRule{
		Name:          req.Name,
		Scope:         req.Scope,
		ScopeValue:    req.ScopeValue,
		PricingMethod: req.PricingMethod,
		MarginMin:     req.MarginMin,
		MarginMax:     req.MarginMax,
		StartDate:     start,
		EndDate:       end,
		Priority:      priority,
		Status:        model.RuleDraft,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return ruleToResponse(rule), nil
}

func (s *priceRuleRegistry) List(ctx context.Context, filter dto.PriceRuleFilter) (*dto.PriceRuleListResponse, error) {
	rules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PriceRuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, *ruleToResponse(&rules[i]))
	}
	return &dto.PriceRuleListResponse{Data: items, Total: len(items)}, nil
}

func (s *priceRuleRegistry) Activate(ctx context.Context, id uuid.UUID) (*dto.PriceRuleResponse, error) {
	return s.transition(ctx, id, model.RuleDraft, model.RuleActive)
}

func (s *priceRuleRegistry) Expire(ctx context.Context, id uuid.UUID) (*dto.PriceRuleResponse, error) {
	return s.transition(ctx, id, model.RuleActive, model.RuleExpired)
}

// transition enforces the rule lifecycle: draft → active → expired.
// Active rules are otherwise immutable.
func (s *priceRuleRegistry) transition(ctx context.Context, id uuid.UUID, from, to string) (*dto.PriceRuleResponse, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: price rule %s", pricing.ErrNotFound, id)
		}
		return nil, err
	}
	if rule.Status != from {
		return nil, fmt.Errorf("%w: cannot move %s rule to %s", pricing.ErrInvalidRule, rule.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	rule.Status = to
	return ruleToResponse(rule), nil
}

func ruleToResponse(r *model.PriceRule) *dto.PriceRuleResponse {
	resp := &dto.PriceRuleResponse{
		ID:            r.ID.String(),
		Name:          r.Name,
		Scope:         r.Scope,
		ScopeValue:    r.ScopeValue,
		PricingMethod: r.PricingMethod,
		MarginMin:     r.MarginMin,
		MarginMax:     r.MarginMax,
		StartDate:     r.StartDate.Format("2006-01-02"),
		Priority:      r.Priority,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if r.EndDate != nil {
		d := r.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
