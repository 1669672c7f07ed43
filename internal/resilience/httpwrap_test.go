package resilience_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/resilience"
)

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)

	cl := resilience.HTTPClient{
		Client:      srv.Client(),
		BaseBackoff: time.Millisecond,
		MaxAttempts: 3,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "ok", string(body))
	require.EqualValues(t, 3, hits.Load())
}

func TestHTTPClientOpenBreakerUsesFallback(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	breaker := resilience.NewBreaker(1, 0.5, time.Minute)
	cl := resilience.HTTPClient{
		Client:      srv.Client(),
		Breaker:     breaker,
		MaxAttempts: 1,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = cl.Do(context.Background(), req)
	require.Error(t, err)
	require.EqualValues(t, 1, hits.Load())

	_, err = cl.Do(context.Background(), req)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.EqualValues(t, 1, hits.Load(), "open breaker short-circuits")

	cl.Fallback = func(_ context.Context, _ *http.Request, cause error) (*http.Response, error) {
		require.True(t, errors.Is(cause, resilience.ErrOpenCircuit))
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("cached"))}, nil
	}
	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	cl := resilience.HTTPClient{Client: srv.Client(), BaseBackoff: time.Millisecond, MaxAttempts: 3}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.EqualValues(t, 1, hits.Load())
}

func TestHTTPClientResendsBodyOnRetry(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	cl := resilience.HTTPClient{Client: srv.Client(), BaseBackoff: time.Millisecond, MaxAttempts: 2}
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"pair":"USDBRL"}`))
	require.NoError(t, err)
	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, []string{`{"pair":"USDBRL"}`, `{"pair":"USDBRL"}`}, bodies)
}

func TestHTTPClientRequiresClient(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	_, err := resilience.HTTPClient{}.Do(context.Background(), req)
	require.Error(t, err)
}
