package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-importa/internal/app"
	"github.com/noah-isme/backend-importa/internal/config"
	"github.com/noah-isme/backend-importa/internal/fx"
	"github.com/noah-isme/backend-importa/internal/lock"
	"github.com/noah-isme/backend-importa/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "importa"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := app.OpenRedis(ctx, cfg, false, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	if cfg.FXCacheBackend != config.CacheBackendRedis {
		logger.Warn().Str("backend", cfg.FXCacheBackend).Msg("fx cache is not shared; refreshes only warm this process")
	}
	provider := app.NewRateProvider(cfg, redisClient, logger.With().Str("component", "fx").Logger())

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri for asynq")
	}
	taskLogger := asynqLogger{l: logger.With().Str("component", "asynq").Logger()}

	mux := asynq.NewServeMux()
	mux.Handle(fx.TypeRefresh, fx.RefreshHandler{
		Provider: provider,
		Locker:   lock.Locker{R: redisClient},
		LockTTL:  cfg.LockTTL,
		Logger:   logger,
	})

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      taskLogger,
	})
	if err := server.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC, Logger: taskLogger})
	schedule := fmt.Sprintf("@every %s", cfg.FXRefreshInterval)
	if _, err := scheduler.Register(schedule, fx.NewRefreshTask(), asynq.MaxRetry(0), asynq.Timeout(cfg.FXFetchTimeout+cfg.LockTTL)); err != nil {
		logger.Fatal().Err(err).Msg("register fx refresh")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}

	client := asynq.NewClient(redisOpt)
	if _, err := client.Enqueue(fx.NewRefreshTask(), asynq.MaxRetry(0)); err != nil {
		logger.Error().Err(err).Msg("enqueue initial fx refresh")
	}
	_ = client.Close()

	logger.Info().Str("schedule", schedule).Str("pair", cfg.FXPair).Msg("worker starting")
	<-ctx.Done()

	scheduler.Shutdown()
	server.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
