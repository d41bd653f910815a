package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// WorkerHandlers bundles the concrete job processors wired at the
// composition root.
type WorkerHandlers struct {
	RuleEval       *RuleEvalWorker
	CompetitorSync *CompetitorSyncWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueRuleEval, QueueCompetitorSync}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	start := time.Now()
	var err error
	switch queue {
	case QueueRuleEval:
		var payload RuleEvalPayload
		if err = json.Unmarshal(job.Payload, &payload); err == nil {
			err = handlers.RuleEval.Process(ctx, payload)
		}
	case QueueCompetitorSync:
		err = handlers.CompetitorSync.Process(ctx)
	default:
		log.Warn().Str("queue", queue).Msg("job from unknown queue dropped")
		return
	}

	evt := log.Info()
	if err != nil {
		evt = log.Error().Err(err)
	}
	evt.Str("type", job.Type).Str("queue", queue).Dur("took", time.Since(start)).Msg("job processed")
}
