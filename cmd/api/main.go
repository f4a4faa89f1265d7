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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/timmy/vidfeed/internal/api"
	"github.com/timmy/vidfeed/internal/api/handler"
	"github.com/timmy/vidfeed/internal/cache"
	"github.com/timmy/vidfeed/internal/config"
	"github.com/timmy/vidfeed/internal/events"
	"github.com/timmy/vidfeed/internal/logger"
	"github.com/timmy/vidfeed/internal/metrics"
	"github.com/timmy/vidfeed/internal/repository"
	"github.com/timmy/vidfeed/internal/service"
	"github.com/timmy/vidfeed/internal/storage"
	"github.com/timmy/vidfeed/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	envCfg := logger.LoadFromEnv()
	appLogger := logger.NewFromEnv(envCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, envCfg.Environment)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize tracing")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to access database handle")
	}

	// Media URLs still resolve without a reachable bucket.
	mediaStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := mediaStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Warn("Failed to ensure storage bucket")
	}

	feedMetrics := metrics.NewFeedMetrics(prometheus.DefaultRegisterer)

	checks := map[string]handler.CheckFunc{"database": sqlDB.PingContext}
	scoreCacheCfg := cache.ScoreCacheConfig{
		ResultTTL:   cfg.Feed.ResultCacheTTL,
		TrendingTTL: cfg.Feed.TrendingTTL,
	}

	var scoreCache *cache.ScoreCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLogger.WithError(err).Warn("Redis unreachable at startup, cache lookups will miss until it recovers")
		}
		scoreCache = cache.NewScoreCache(
			cache.NewRedisStore(rdb, cfg.Redis.KeyPrefix+"feed:", cfg.Feed.MaxCachedPages),
			cache.NewRedisStore(rdb, cfg.Redis.KeyPrefix+"trending:", 0),
			scoreCacheCfg,
			feedMetrics,
		)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		scoreCache = cache.NewMemoryScoreCache(scoreCacheCfg, cfg.Feed.MaxCachedPages, nil, feedMetrics)
	}

	feedService := service.NewFeedService(
		repository.NewCandidateRepository(db),
		scoreCache,
		mediaStorage,
		feedMetrics,
		service.FeedConfig{
			DefaultLimit: cfg.Feed.DefaultLimit,
			MaxLimit:     cfg.Feed.MaxLimit,
		},
	)

	var reader *kafka.Reader
	consumerDone := make(chan struct{})
	if cfg.Kafka.Enabled {
		reader = events.NewReader(cfg.Kafka)
		consumer := events.NewConsumer(reader, scoreCache)
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				appLogger.WithError(err).Error("Moderation consumer stopped")
			}
		}()
		appLogger.WithFields(logger.Fields{
			"topic": cfg.Kafka.Topic,
			"group": cfg.Kafka.GroupID,
		}).Info("Moderation consumer started")
	}

	router := api.SetupRouter(api.RouterConfig{
		Mode:      cfg.Server.Mode,
		CORS:      cfg.Server.CORS,
		JWTSecret: cfg.Auth.JWTSecret,
		Feed:      handler.NewFeedHandler(feedService, cfg.Feed.RequestTimeout),
		Health:    handler.NewHealthHandler(checks),
		Metrics:   promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           otelhttp.NewHandler(router, "vidfeed"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
	if reader != nil {
		<-consumerDone
		if err := reader.Close(); err != nil {
			appLogger.WithError(err).Warn("Failed to close moderation reader")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.WithError(err).Warn("Failed to flush traces")
	}
	if err := sqlDB.Close(); err != nil {
		appLogger.WithError(err).Warn("Failed to close database")
	}

	appLogger.Info("Server exited")
}
