package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/database"
	"github.com/radiusdt/vector-insights/internal/execution"
	"github.com/radiusdt/vector-insights/internal/httpserver"
	"github.com/radiusdt/vector-insights/internal/insights"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/middleware"
	"github.com/radiusdt/vector-insights/internal/segments"
	"github.com/radiusdt/vector-insights/internal/status"
	"github.com/radiusdt/vector-insights/internal/storage"
	"go.uber.org/zap"
)

const (
	connectTimeout  = 10 * time.Second
	dbStatsInterval = 30 * time.Second
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting vector-insights",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	m := metrics.NewMetrics(cfg.Metrics.Namespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var checkers []database.Checker

	// Entity metrics and insights: PostgreSQL, else in memory.
	var entities storage.EntityRepo
	var insightRepo storage.InsightRepo
	var pg *database.PostgresDB
	if cfg.Database.Enabled {
		pg, err = connect(ctx, func(ctx context.Context) (*database.PostgresDB, error) {
			return database.NewPostgresDB(ctx, cfg.Database, logger)
		})
		if err != nil {
			logger.Warn("PostgreSQL not available, using in-memory storage", zap.Error(err))
			pg = nil
		}
	}
	if pg != nil {
		defer pg.Close()
		checkers = append(checkers, pg)
		repo := storage.NewPostgresEntityRepo(pg.Pool)
		entities, insightRepo = repo, repo
		go reportDBStats(ctx, pg, m)
	} else {
		repo := storage.NewInMemoryEntityRepo()
		entities, insightRepo = repo, repo
	}

	// Observed segment breakdowns: ClickHouse, else synthetic only.
	var observed storage.SegmentRepo = storage.NoSegments{}
	if cfg.Segments.RealDataSource == "clickhouse" && cfg.ClickHouse.Enabled {
		ch, err := connect(ctx, func(ctx context.Context) (*database.ClickHouseDB, error) {
			return database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		})
		if err != nil {
			logger.Warn("ClickHouse not available, segments will be synthesized", zap.Error(err))
		} else {
			defer ch.Close()
			checkers = append(checkers, ch)
			observed = storage.NewClickHouseSegmentRepo(ch.Conn, ch.Table)
		}
	}

	// Synthetic segment cache.
	var cache segments.Cache
	switch cfg.Segments.CacheBackend {
	case "redis":
		if !cfg.Redis.Enabled {
			logger.Warn("redis segment cache requested but Redis is disabled, using memory")
			cache = segments.NewMemoryCache(cfg.Segments.CacheTTL)
			break
		}
		rdb, err := connect(ctx, func(ctx context.Context) (*database.RedisDB, error) {
			return database.NewRedisDB(ctx, cfg.Redis, logger)
		})
		if err != nil {
			logger.Warn("Redis not available, using in-memory segment cache", zap.Error(err))
			cache = segments.NewMemoryCache(cfg.Segments.CacheTTL)
			break
		}
		defer rdb.Close()
		checkers = append(checkers, rdb)
		cache = segments.NewRedisCache(rdb.Client, cfg.Segments.CacheTTL, cfg.Segments.CachePrefix)
	case "memory":
		cache = segments.NewMemoryCache(cfg.Segments.CacheTTL)
	}

	// Execution backend.
	var backend execution.Backend
	if cfg.Backend.URL != "" {
		backend = execution.NewHTTPBackend(cfg.Backend, logger, m)
	} else {
		logger.Warn("no execution backend configured, recording actions in memory")
		backend = execution.NewRecorder()
	}

	statusStore := status.NewStore(backend, m, logger)
	handler := httpserver.NewServer(&httpserver.Dependencies{
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		Reports:     insights.NewReportService(entities, m),
		Segments:    insights.NewSegmentService(entities, observed, segments.NewReconciler(cache, m, logger), logger),
		Suggestions: insights.NewSuggestionService(insightRepo, backend, statusStore, m, logger),
		Builds:      insights.NewBuildService(entities, backend, m, logger),
		Statuses:    insights.NewStatusService(statusStore, entities),
		Checkers:    checkers,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func connect[T any](ctx context.Context, open func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return open(ctx)
}

func reportDBStats(ctx context.Context, db *database.PostgresDB, m *metrics.Metrics) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()
	for {
		db.ReportStats(m)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
