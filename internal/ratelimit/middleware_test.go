package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type failingBackend struct{ err error }

func (f failingBackend) Allow(context.Context, string, time.Duration, int) (bool, int, time.Time, error) {
	return false, 0, time.Time{}, f.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestSlidingWindowGuardsOrderCreation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guarded := Handler{
		Limiter: SlidingWindow{Client: client, Prefix: "ratelimit:orders:"},
		Config:  Config{Key: ByClientIP(""), Window: time.Second, Max: 1},
	}.Middleware(okHandler())

	post := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil))
		return rec
	}
	require.Equal(t, http.StatusOK, post().Code)
	limited := post()
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.Equal(t, "1", limited.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
}

func TestHandlerFailsOpenOnBackendError(t *testing.T) {
	boom := errors.New("redis unavailable")
	var seen error
	guarded := Handler{
		Limiter: failingBackend{err: boom},
		Config:  Config{Key: ByClientIP("api:"), Window: time.Second, Max: 1},
		OnError: func(err error) { seen = err },
	}.Middleware(okHandler())

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.ErrorIs(t, seen, boom)
}

func TestHandlerWritesJSONErrorWhenLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backend, err := NewFixedWindow(client, "ratelimit:api")
	require.NoError(t, err)
	handler := Handler{
		Limiter: backend,
		Config:  Config{Key: ByClientIP("api:"), Window: time.Minute, Max: 2},
	}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	first := send("10.0.0.1")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	rr := send("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), CodeRateLimited), rr.Body.String())
	require.NotEmpty(t, rr.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, send("10.0.0.2").Code, "other clients keep their own budget")
}

func TestHandlerDisabledWithoutLimit(t *testing.T) {
	handler := Handler{Limiter: SlidingWindow{}, Config: Config{Key: ByClientIP("x:"), Window: time.Second}}.
		Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) }))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
}
