package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost/importa",
		"REDIS_URL":    "redis://localhost:6379/0",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "USDBRL", cfg.FXPair)
	require.Equal(t, "5.3", cfg.FXFallbackRate.String())
	require.Equal(t, 10*time.Minute, cfg.FXCacheTTL)
	require.Equal(t, 3*time.Second, cfg.FXFetchTimeout)
	require.Equal(t, CacheBackendRedis, cfg.FXCacheBackend)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, ":8080", cfg.HTTPAddr())
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["FX_PAIR"] = "eurbrl"
	env["FX_FALLBACK_RATE"] = "6.10"
	env["FX_CACHE_TTL"] = "90s"
	env["FX_CACHE_BACKEND"] = "memory"
	env["RATE_LIMIT_REQUESTS"] = "10"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example, https://b.example ,"
	env["PORT"] = ":9090"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "EURBRL", cfg.FXPair)
	require.Equal(t, "6.1", cfg.FXFallbackRate.String())
	require.Equal(t, 90*time.Second, cfg.FXCacheTTL)
	require.Equal(t, CacheBackendMemory, cfg.FXCacheBackend)
	require.EqualValues(t, 10, cfg.RateLimitRequests)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, ":9090", cfg.HTTPAddr())
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	env := baseEnv()
	env["ANALYTICS_CACHE_TTL"] = "soon"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.AnalyticsCacheTTL)
}

func TestLoadRequiresConnections(t *testing.T) {
	_, err := LoadForTests(map[string]string{"DATABASE_URL": "", "REDIS_URL": "redis://x"})
	require.ErrorContains(t, err, "DATABASE_URL")

	_, err = LoadForTests(map[string]string{"DATABASE_URL": "postgres://x", "REDIS_URL": ""})
	require.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadRejectsBadRateSettings(t *testing.T) {
	env := baseEnv()
	env["FX_FALLBACK_RATE"] = "-1"
	_, err := LoadForTests(env)
	require.ErrorContains(t, err, "FX_FALLBACK_RATE")

	env = baseEnv()
	env["FX_CACHE_BACKEND"] = "disk"
	_, err = LoadForTests(env)
	require.ErrorContains(t, err, "FX_CACHE_BACKEND")
}
