// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/backend-importa/internal/common"
)

const (
	defaultDBTimeout    = 500 * time.Millisecond
	defaultRedisTimeout = 300 * time.Millisecond
)

var draining atomic.Bool

// SetReady flips the readiness flag. The api clears it on SIGTERM so the
// load balancer stops routing before the server shuts down.
func SetReady(v bool) { draining.Store(!v) }

// Checker probes the hard dependencies: Postgres and Redis.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// RateStatus reports where the exchange rate currently comes from ("live",
// "fallback" or "stale"). Pricing always has a rate, so it never gates
// readiness.
type RateStatus interface {
	RateState(ctx context.Context) string
}

// Handler serves /health/live and /health/ready.
type Handler struct {
	Checker      Checker
	Rates        RateStatus
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live answers 200 while the process is up.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready answers 200 when Postgres and Redis respond and the server is not
// draining, 503 otherwise. Both probes run concurrently.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	ctx := r.Context()

	var dbErr, redisErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dbErr = h.Checker.PingDB(ctx, orDefault(h.DBTimeout, defaultDBTimeout))
	}()
	go func() {
		defer wg.Done()
		redisErr = h.Checker.PingRedis(ctx, orDefault(h.RedisTimeout, defaultRedisTimeout))
	}()
	wg.Wait()

	status := map[string]string{
		"status": "ok",
		"db":     probe(dbErr),
		"redis":  probe(redisErr),
	}
	if h.Rates != nil {
		status["fx"] = h.Rates.RateState(ctx)
	}
	code := http.StatusOK
	if dbErr != nil || redisErr != nil {
		code = http.StatusServiceUnavailable
		status["status"] = "degraded"
	}
	if draining.Load() {
		code = http.StatusServiceUnavailable
		status["status"] = "unavailable"
		status["server"] = "draining"
	}
	common.JSON(w, code, status)
}

func probe(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
