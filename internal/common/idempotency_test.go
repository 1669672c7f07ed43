package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newIdem(t *testing.T) (Idem, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Idem{R: client, TTL: time.Minute}, mr
}

func TestIdemReplaysStoredResponse(t *testing.T) {
	idem, _ := newIdem(t)
	var calls atomic.Int32
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		JSON(w, http.StatusCreated, map[string]any{"call": n})
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	second := do()
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.EqualValues(t, 1, calls.Load())
}

func TestIdemPendingKeyConflicts(t *testing.T) {
	idem, mr := newIdem(t)
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set("Idempotency-Key", "busy")
	require.NoError(t, mr.Set(idemKey(req, "busy"), idemPending))

	rec := httptest.NewRecorder()
	idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), CodeIdempotentReplay)
}

func TestIdemReleasesKeyOnServerError(t *testing.T) {
	idem, mr := newIdem(t)
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSONError(w, http.StatusInternalServerError, CodeInternal, "boom", nil)
	}))
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set("Idempotency-Key", "retry-me")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, mr.Exists(idemKey(req, "retry-me")))
}

func TestIdemWithoutHeaderPassesThrough(t *testing.T) {
	idem, mr := newIdem(t)
	rec := httptest.NewRecorder()
	idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, mr.Keys())
}
