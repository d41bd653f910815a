package worker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	QueueRuleEval       = "jobs:rule-eval"
	QueueCompetitorSync = "jobs:competitor-sync"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RuleEvalPayload names the rule to evaluate; empty means every active rule.
type RuleEvalPayload struct {
	RuleID string `json:"rule_id,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRuleEval pushes a rule-evaluation job to Redis.
func (d *Dispatcher) EnqueueRuleEval(ctx context.Context, ruleID string) error {
	return d.enqueue(ctx, QueueRuleEval, "rule-eval", RuleEvalPayload{RuleID: ruleID})
}

// EnqueueCompetitorSync pushes a competitor price refresh job to Redis.
func (d *Dispatcher) EnqueueCompetitorSync(ctx context.Context) error {
	return d.enqueue(ctx, QueueCompetitorSync, "competitor-sync", struct{}{})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}
