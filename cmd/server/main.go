package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantdesk/quantdesk/internal/clients/yahoo"
	"github.com/quantdesk/quantdesk/internal/config"
	"github.com/quantdesk/quantdesk/internal/database"
	"github.com/quantdesk/quantdesk/internal/modules/analysis"
	"github.com/quantdesk/quantdesk/internal/modules/indicators"
	"github.com/quantdesk/quantdesk/internal/modules/marketdata"
	"github.com/quantdesk/quantdesk/internal/modules/optimization"
	"github.com/quantdesk/quantdesk/internal/modules/portfolio"
	"github.com/quantdesk/quantdesk/internal/modules/rebalancing"
	"github.com/quantdesk/quantdesk/internal/modules/seasonality"
	"github.com/quantdesk/quantdesk/internal/modules/trend"
	"github.com/quantdesk/quantdesk/internal/scheduler"
	"github.com/quantdesk/quantdesk/internal/server"
	"github.com/quantdesk/quantdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting QuantDesk")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to create data directory")
	}

	// cache.db - persisted daily bars and fetch metadata
	cacheDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cache.db",
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache database")
	}
	defer cacheDB.Close()

	repo, err := marketdata.NewRepository(cacheDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize price repository")
	}

	yahooClient := yahoo.NewClient(log)
	store := marketdata.NewService(yahooClient, repo, cfg.HistoryLookback,
		time.Duration(cfg.CacheTTLMinutes)*time.Minute, log)

	// analysis services
	indicatorService := indicators.NewService(store, log)
	trendAnalyzer := trend.NewAnalyzer(store, log)
	seasonalityAnalyzer := seasonality.NewAnalyzer(store, log)
	composite := analysis.NewAnalyzer(indicatorService, trendAnalyzer, seasonalityAnalyzer,
		store, store, cfg.Indicators, cfg.Composite, log)

	// portfolio services
	builder := portfolio.NewBuilder(log)
	evaluator := portfolio.NewEvaluator(store, store, log)
	optimizer := optimization.NewOptimizer(store, log)
	rebalancer := rebalancing.NewRebalancer(cfg.OrderFee, log)

	// background refresh of cached series
	sched := scheduler.New(log)
	refreshJob := scheduler.NewRefreshPricesJob(store, log)
	if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:        log,
		Config:     cfg,
		MarketData: marketdata.NewHandlers(store, log),
		Indicators: indicators.NewHandlers(indicatorService, cfg.Indicators, log),
		Analysis:   analysis.NewHandlers(trendAnalyzer, seasonalityAnalyzer, composite, log),
		Portfolio:  portfolio.NewHandlers(builder, evaluator, log),
		Optimizer:  optimization.NewHandlers(optimizer, log),
		Rebalancer: rebalancing.NewHandlers(rebalancer, cfg.DriftThreshold, log),
		System: server.NewSystemHandlers(log, func() (int, error) {
			tickers, err := repo.CachedTickers()
			return len(tickers), err
		}),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Stopped")
}
