package app

import (
	"context"
	"fmt"
	"net/http"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-importa/internal/config"
	"github.com/noah-isme/backend-importa/internal/fx"
	"github.com/noah-isme/backend-importa/internal/obs"
	"github.com/noah-isme/backend-importa/internal/resilience"
)

// OpenPool connects to Postgres with query tracing and numeric columns
// decoded as shopspring decimals.
func OpenPool(ctx context.Context, cfg *config.Config, appName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = appName
	if cfg.DBStatementCacheCapacity >= 0 {
		poolConfig.ConnConfig.StatementCacheCapacity = cfg.DBStatementCacheCapacity
	}
	if cfg.DBMaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.DBMaxConns)
	}
	if cfg.DBMinConns > 0 {
		poolConfig.MinConns = int32(cfg.DBMinConns)
	}
	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// OpenRedis connects to Redis with tracing and, optionally, client metrics.
func OpenRedis(ctx context.Context, cfg *config.Config, metrics bool, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRateProvider builds the exchange rate provider shared by the api and
// the worker. Without FX_SOURCE_URL the fallback rate is served.
func NewRateProvider(cfg *config.Config, client *redis.Client, logger zerolog.Logger) *fx.Provider {
	var source fx.Source = fx.StaticSource{Rate: cfg.FXFallbackRate}
	if cfg.FXSourceURL != "" {
		source = fx.HTTPSource{
			URL:  cfg.FXSourceURL,
			Pair: cfg.FXPair,
			Client: &resilience.HTTPClient{
				Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
				Breaker:     resilience.NewBreaker(cfg.CircuitFXMinReq, cfg.CircuitFXFailureRate, cfg.CircuitFXOpenFor).WithTarget("fx-feed").WithLogger(logger),
				BaseBackoff: cfg.RetryBase,
				MaxAttempts: cfg.RetryMaxAttempts,
				Jitter:      cfg.RetryJitterPercent,
				Timeout:     cfg.OutboundTimeout,
				Logger:      &logger,
			},
		}
	}

	var rateCache fx.Cache = &fx.MemoryCache{}
	if cfg.FXCacheBackend == config.CacheBackendRedis && client != nil {
		rateCache = fx.RedisCache{Client: client, Key: "fx:quote:" + cfg.FXPair, Logger: &logger}
	}

	return fx.NewProvider(fx.ProviderConfig{
		Source:       source,
		Cache:        rateCache,
		TTL:          cfg.FXCacheTTL,
		FetchTimeout: cfg.FXFetchTimeout,
		FallbackRate: cfg.FXFallbackRate,
		Pair:         cfg.FXPair,
		Logger:       &logger,
	})
}
