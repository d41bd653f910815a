package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/config"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/infra"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/router"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Competitor feed runs behind the circuit breaker so outages fast-fail.
	feedClient := infra.NewCompetitorFeedClient(cfg.CompetitorFeedURL)
	feedCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	skuRepo := repository.NewSkuRepository(db)
	changeRepo := repository.NewPriceChangeRepository(db)
	pendingRepo := repository.NewPendingUpdateRepository(db)
	ruleRepo := repository.NewPriceRuleRepository(db)

	riskTTL := time.Duration(cfg.RiskCacheTTLMinutes) * time.Minute
	ledger := service.NewSkuLedger(skuRepo, changeRepo, rdb, riskTTL)
	workflow := service.NewPendingUpdateWorkflow(pendingRepo, skuRepo, ledger)

	workerHandlers := &worker.WorkerHandlers{
		RuleEval:       worker.NewRuleEvalWorker(ruleRepo, skuRepo, workflow),
		CompetitorSync: worker.NewCompetitorSyncWorker(feedClient, feedCB, skuRepo),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	// Periodic competitor price refresh; first sync runs one interval after boot.
	go func() {
		interval := time.Duration(cfg.CompetitorSyncIntervalHours) * time.Hour
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := dispatcher.EnqueueCompetitorSync(ctx); err != nil {
					log.Error().Err(err).Msg("failed to enqueue competitor sync")
				}
			}
		}
	}()

	r := router.New(cfg, db, rdb, feedCB, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("pricing engine listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
