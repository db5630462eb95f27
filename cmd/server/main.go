package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/fundwallet/fundwallet-backend/internal/api"
	"github.com/fundwallet/fundwallet-backend/internal/cache"
	"github.com/fundwallet/fundwallet-backend/internal/codec"
	"github.com/fundwallet/fundwallet-backend/internal/config"
	"github.com/fundwallet/fundwallet-backend/internal/database"
	"github.com/fundwallet/fundwallet-backend/internal/fetcher"
	"github.com/fundwallet/fundwallet-backend/internal/logging"
	"github.com/fundwallet/fundwallet-backend/internal/metrics"
	"github.com/fundwallet/fundwallet-backend/internal/pipeline"
	"github.com/fundwallet/fundwallet-backend/internal/progress"
	"github.com/fundwallet/fundwallet-backend/internal/repository"
	"github.com/fundwallet/fundwallet-backend/internal/service"
	"github.com/fundwallet/fundwallet-backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(cfg.Log)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	store, closeStore, err := openStore(cfg, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open payload cache")
	}
	defer closeStore()

	c, err := codec.New([]byte(cfg.Data.Key))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create codec")
	}

	broadcaster := progress.NewBroadcaster()
	f := fetcher.New(fetcher.Options{
		Timeout:   cfg.Data.Timeout,
		UserAgent: "fundwallet/" + version.Version,
		Progress:  broadcaster,
		Metrics:   m,
		Logger:    logger,
	})

	// Create repositories
	settingsRepo := repository.NewSettingsRepository(db)
	source := service.NewSettingsSource(settingsRepo, cfg.Data.URL)

	p, err := pipeline.New(pipeline.Options{
		Fetcher:     f,
		Codec:       c,
		Source:      source,
		Store:       store,
		Policy:      cache.Policy{Version: cfg.Cache.Version, MaxAge: cfg.Cache.MaxAge},
		CacheKey:    cfg.Cache.Key,
		Chunks:      cfg.Data.Chunks,
		Concurrency: cfg.Data.FetchConcurrency,
		Progress:    broadcaster,
		Metrics:     m,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create pipeline")
	}
	defer p.Close()

	// Create services
	fundService := service.NewFundService(p, broadcaster, m, logger)
	systemService := service.NewSystemService(
		db,
		p,
		settingsRepo,
		source,
		cfg.Cache.Version,
		map[string]bool{
			"search":            true,
			"export":            true,
			"chunked_loading":   cfg.Data.Chunks > 1,
			"scheduled_refresh": cfg.Refresh.Schedule != "",
		},
		logger,
	)

	scheduler, err := service.NewRefreshScheduler(cfg.Refresh.Schedule, p, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create refresh scheduler")
	}
	scheduler.Start()

	// Warm up in the background so the first request finds data.
	go func() {
		ctx, cancel := warmupContext(cfg.Data.Timeout)
		defer cancel()
		state, err := p.Start(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Initial load failed")
			return
		}
		logger.Info().Str("state", state.String()).Msg("Initial load finished")
	}()

	// Create router
	router := api.NewRouter(api.Dependencies{
		System:   systemService,
		Funds:    fundService,
		Progress: broadcaster,
		Gatherer: registry,
		Logger:   logger,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("version", version.Version).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// openStore builds the configured persistent payload cache, sealed with fernet
// when a seal key is set.
func openStore(cfg *config.Config, db *sql.DB) (cache.Store, func(), error) {
	var (
		store cache.Store
		done  = func() {}
	)
	switch cfg.Cache.Backend {
	case config.CacheBackendBolt:
		bolt, err := cache.OpenBolt(cfg.Cache.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		store = bolt
		done = func() { _ = bolt.Close() }
	case config.CacheBackendMemory:
		store = cache.NewMemoryStore()
	default:
		store = repository.NewCacheRepository(db)
	}

	if cfg.Cache.SealKey == "" {
		return store, done, nil
	}
	sealed, err := cache.Sealed(store, cfg.Cache.SealKey, cfg.Cache.SealTTL)
	if err != nil {
		done()
		return nil, nil, err
	}
	return sealed, done, nil
}

// warmupContext bounds the initial load by timeout. A zero timeout means no
// limit, matching the fetcher.
func warmupContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
