package resilience

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPClient performs outbound calls with a per-attempt timeout, jittered
// exponential retries on transport errors, 429 and 5xx, and an optional
// circuit breaker shared by every call to the same dependency.
type HTTPClient struct {
	Client      *http.Client
	Breaker     *Breaker
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
	Timeout     time.Duration
	Logger      *zerolog.Logger
	// Fallback, when set, answers instead of the last error once attempts
	// are exhausted or the breaker is open.
	Fallback func(context.Context, *http.Request, error) (*http.Response, error)
}

// Do sends req. The body, if any, is buffered so every attempt can resend it.
// A response that is neither 429 nor 5xx is returned as is; the caller owns
// its body.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	attempts := cl.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	body, err := bufferBody(req)
	if err != nil {
		return nil, fmt.Errorf("resilience: buffer request body: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cl.Breaker != nil && !cl.Breaker.Allow(ctx) {
			lastErr = ErrOpenCircuit
			break
		}
		resp, err := cl.attempt(ctx, req, body)
		if err == nil && !retryable(resp.StatusCode) {
			cl.report(ctx, true)
			return resp, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("resilience: upstream status %d", resp.StatusCode)
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		} else {
			lastErr = err
		}
		cl.report(ctx, false)
		if attempt == attempts || ctx.Err() != nil {
			break
		}

		wait := Backoff(cl.BaseBackoff, attempt, cl.Jitter)
		if cl.Logger != nil {
			cl.Logger.Debug().Err(lastErr).Int("attempt", attempt).Dur("backoff", wait).Str("host", req.URL.Host).Msg("outbound_retry")
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if cl.Fallback != nil {
		return cl.Fallback(ctx, req, lastErr)
	}
	return nil, lastErr
}

func (cl HTTPClient) attempt(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	timeout := cl.Timeout
	if timeout <= 0 {
		timeout = cl.Client.Timeout
	}
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	out := req.Clone(callCtx)
	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
	}
	resp, err := cl.Client.Do(out)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (cl HTTPClient) report(ctx context.Context, ok bool) {
	if cl.Breaker != nil {
		cl.Breaker.Report(ctx, ok)
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return data, nil
}

// cancelOnClose keeps the attempt context alive until the caller has read
// the body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
