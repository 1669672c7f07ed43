package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/backend-importa/internal/common"
)

// CodeRateLimited is the error code written on HTTP 429.
const CodeRateLimited = "RATE_LIMITED"

// Backend counts one hit for key and reports whether it fits in max per window.
type Backend interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error)
}

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// ByClientIP keys requests by client address under the given prefix.
func ByClientIP(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		return prefix + common.ClientIP(r)
	}
}

// Handler enforces rate limits before delegating to the next handler.
// Backend failures let the request through.
type Handler struct {
	Limiter Backend
	Config  Config
	OnError func(error)
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Limiter == nil || h.Config.Key == nil || h.Config.Max <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := h.Config.Key(r)
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), key, h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(h.Config.Max))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
