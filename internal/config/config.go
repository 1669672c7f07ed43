package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Rate cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	DBMaxConns               int
	DBMinConns               int
	DBStatementCacheCapacity int

	FXSourceURL       string
	FXPair            string
	FXFallbackRate    decimal.Decimal
	FXCacheTTL        time.Duration
	FXFetchTimeout    time.Duration
	FXCacheBackend    string
	FXRefreshInterval time.Duration

	AnalyticsCacheTTL time.Duration
	CatalogCacheTTL   time.Duration
	IdempotencyTTL    time.Duration
	BodyLimitBytes    int64

	RateLimitRequests      int
	RateLimitWindow        time.Duration
	OrderRateLimitRequests int
	OrderRateLimitWindow   time.Duration

	CircuitFXMinReq      int
	CircuitFXFailureRate float64
	CircuitFXOpenFor     time.Duration
	RetryBase            time.Duration
	RetryMaxAttempts     int
	RetryJitterPercent   float64
	OutboundTimeout      time.Duration

	LockTTL           time.Duration
	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		DBMaxConns:               parseInt(k.String("DB_MAX_CONNS"), 10),
		DBMinConns:               parseInt(k.String("DB_MIN_CONNS"), 2),
		DBStatementCacheCapacity: parseInt(k.String("DB_STATEMENT_CACHE_CAPACITY"), -1),

		FXSourceURL:       strings.TrimSpace(k.String("FX_SOURCE_URL")),
		FXPair:            strings.ToUpper(valueOrDefault(k.String("FX_PAIR"), "USDBRL")),
		FXCacheTTL:        parseDuration(k.String("FX_CACHE_TTL"), "10m"),
		FXFetchTimeout:    parseDuration(k.String("FX_FETCH_TIMEOUT"), "3s"),
		FXCacheBackend:    strings.ToLower(valueOrDefault(k.String("FX_CACHE_BACKEND"), CacheBackendRedis)),
		FXRefreshInterval: parseDuration(k.String("FX_REFRESH_INTERVAL"), "5m"),

		AnalyticsCacheTTL: parseDuration(k.String("ANALYTICS_CACHE_TTL"), "30s"),
		CatalogCacheTTL:   parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		IdempotencyTTL:    parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		BodyLimitBytes:    int64(parseInt(k.String("HTTP_BODY_LIMIT_BYTES"), 1<<20)),

		RateLimitRequests:      parseInt(k.String("RATE_LIMIT_REQUESTS"), 120),
		RateLimitWindow:        parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		OrderRateLimitRequests: parseInt(k.String("ORDER_RATE_LIMIT_REQUESTS"), 20),
		OrderRateLimitWindow:   parseDuration(k.String("ORDER_RATE_LIMIT_WINDOW"), "1m"),

		CircuitFXMinReq:      parseInt(k.String("CIRCUIT_FX_MIN_REQ"), 5),
		CircuitFXFailureRate: parseFloat(k.String("CIRCUIT_FX_FAILURE_RATE"), 0.5),
		CircuitFXOpenFor:     parseDuration(k.String("CIRCUIT_FX_OPEN_FOR"), "30s"),
		RetryBase:            parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryMaxAttempts:     parseInt(k.String("RETRY_MAX_ATTEMPTS"), 2),
		RetryJitterPercent:   parseFloat(k.String("RETRY_JITTER_PCT"), 0.2),
		OutboundTimeout:      parseDuration(k.String("OUTBOUND_TIMEOUT"), "2s"),

		LockTTL:           parseDuration(k.String("LOCK_TTL"), "30s"),
		WorkerConcurrency: parseInt(k.String("WORKER_CONCURRENCY"), 2),
	}

	rate, err := parseDecimal(k.String("FX_FALLBACK_RATE"), "5.30")
	if err != nil {
		return nil, fmt.Errorf("FX_FALLBACK_RATE: %w", err)
	}
	cfg.FXFallbackRate = rate

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	switch cfg.FXCacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return nil, fmt.Errorf("FX_CACHE_BACKEND must be %q or %q", CacheBackendMemory, CacheBackendRedis)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseDecimal(value, fallback string) (decimal.Decimal, error) {
	raw := valueOrDefault(value, fallback)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.Sign() <= 0 {
		return decimal.Zero, errors.New("must be positive")
	}
	return d, nil
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
