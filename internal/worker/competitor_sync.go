package worker

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/infra"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
)

// CompetitorSyncWorker refreshes competitor averages from the external feed.
// It only ever touches competitor_avg — margins and statuses stay derived
// from the ledger's own prices. The feed call runs through the circuit
// breaker so an outage fast-fails instead of stalling the pool.
type CompetitorSyncWorker struct {
	feed    *infra.CompetitorFeedClient
	breaker *infra.CircuitBreaker
	skuRepo repository.SkuRepository
}

func NewCompetitorSyncWorker(feed *infra.CompetitorFeedClient, breaker *infra.CircuitBreaker, skuRepo repository.SkuRepository) *CompetitorSyncWorker {
	return &CompetitorSyncWorker{feed: feed, breaker: breaker, skuRepo: skuRepo}
}

func (w *CompetitorSyncWorker) Process(ctx context.Context) error {
	skus, _, err := w.skuRepo.List(ctx, dto.SkuFilter{Page: 1, Limit: 10000})
	if err != nil {
		return err
	}
	if len(skus) == 0 {
		return nil
	}

	codes := make([]string, 0, len(skus))
	for _, sku := range skus {
		codes = append(codes, sku.Code)
	}

	var quotes []infra.CompetitorQuote
	err = w.breaker.Execute(func() error {
		var feedErr error
		quotes, feedErr = w.feed.FetchQuotes(ctx, codes)
		return feedErr
	})
	if err != nil {
		return err
	}

	byCode := make(map[string]infra.CompetitorQuote, len(quotes))
	for _, q := range quotes {
		byCode[q.Code] = q
	}

	updated := 0
	for _, sku := range skus {
		q, ok := byCode[sku.Code]
		if !ok || !q.AveragePrice.IsPositive() {
			continue
		}
		if err := w.skuRepo.UpdateCompetitorAvg(ctx, sku.ID, q.AveragePrice.Round(2)); err != nil {
			log.Error().Str("sku", sku.Code).Err(err).Msg("competitor-sync: update failed")
			continue
		}
		updated++
	}

	log.Info().Int("skus", len(skus)).Int("quotes", len(quotes)).Int("updated", updated).
		Msg("competitor price sync finished")
	return nil
}
