package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsdash/internal/config"
	"opsdash/internal/infra"
	"opsdash/internal/metrics"
	"opsdash/internal/middleware"
	"opsdash/internal/repository"
	"opsdash/internal/router"
	"opsdash/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger. Dev: pretty, prod: JSON (switched after config load)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	configureLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Dataset ──────────────────────────────────────────────────────────────
	loader := service.NewLoaderService(repository.NewCSVDatasetRepository(cfg.DataDir))
	ds, cleaning, err := loader.LoadAndClean(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("data_dir", cfg.DataDir).Msg("failed to load dataset")
	}
	for table, n := range ds.RowCounts() {
		log.Info().Str("table", table).Int("rows", n).Msg("table loaded")
	}

	m := metrics.New()
	m.SetDatasetRows(ds.RowCounts())

	// ── Dashboard options ────────────────────────────────────────────────────
	overlay, err := service.LoadOverlay(cfg.PromotionOverlayFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load promotion overlay")
	}
	for _, name := range service.MissingPromotions(ds, overlay) {
		log.Warn().Str("promotion", name).Msg("overlay promotion not found; skipped")
	}
	policy, err := service.ParseSupplierPolicy(cfg.SupplierPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid supplier policy")
	}

	opts := service.DashboardOptions{
		SupplierPolicy: policy,
		Overlay:        overlay,
		Now:            cfg.Clock(),
		Metrics:        m,
	}

	// Optional Redis view cache; the dashboard works without it
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; view cache disabled")
		} else {
			defer rdb.Close()
			opts.Cache = infra.NewViewCache(rdb, cfg.CacheTTL(), infra.NewCircuitBreaker(infra.DefaultCBConfig()))
			log.Info().Dur("ttl", cfg.CacheTTL()).Msg("redis view cache enabled")
		}
	}

	dashboard := service.NewDashboardService(ds, opts)
	if _, err := dashboard.Build(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to compute dashboard")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	go limiter.Run(ctx)

	r := router.New(cfg, router.Deps{
		Dataset:   ds,
		Cleaning:  cleaning,
		Dashboard: dashboard,
		Export:    service.NewExportService(dashboard, cleaning),
		Metrics:   m,
		Limiter:   limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("dashboard listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

func configureLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
