// Package resilience wraps outbound HTTP calls (the exchange-rate feed) with
// timeouts, jittered retries and a failure-ratio circuit breaker.
package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned when the breaker refuses a call.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// maxBackoff caps exponential growth for large attempt numbers.
const maxBackoff = 30 * time.Second

// State is the breaker position.
type State int

const (
	// Closed lets every call through and counts outcomes.
	Closed State = iota
	// Open rejects calls until the cool-off elapses.
	Open
	// HalfOpen lets a single probe through to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// gaugeValue is the breaker_state gauge encoding.
func (s State) gaugeValue() float64 {
	switch s {
	case Closed:
		return 0
	case Open:
		return 1
	case HalfOpen:
		return 2
	default:
		return -1
	}
}

// Breaker opens once at least minRequests outcomes were seen and the failure
// ratio reaches failureRatio. After openFor it admits one probe; the probe's
// outcome closes or reopens it.
type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	probing      bool
	minRequests  int
	failureRatio float64
	openedAt     time.Time
	openFor      time.Duration
	target       string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewBreaker builds a closed breaker. Out-of-range settings are clamped:
// minRequests to at least 1, failureRatio into (0, 1], openFor to 30s.
func NewBreaker(minRequests int, failureRatio float64, openFor time.Duration) *Breaker {
	if minRequests <= 0 {
		minRequests = 1
	}
	if failureRatio <= 0 {
		failureRatio = 0.5
	}
	if failureRatio > 1 {
		failureRatio = 1
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &Breaker{
		minRequests:  minRequests,
		failureRatio: failureRatio,
		openFor:      openFor,
		logger:       zerolog.Nop(),
		now:          time.Now,
	}
}

// WithTarget names the guarded dependency in metrics and logs.
func (b *Breaker) WithTarget(target string) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = strings.TrimSpace(target)
	b.publishStateLocked()
	return b
}

// WithLogger sets the logger used when no request logger is on the context.
func (b *Breaker) WithLogger(logger zerolog.Logger) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = logger
	return b
}

// WithClock replaces time.Now.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now != nil {
		b.now = now
	}
	return b
}

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. An open breaker whose cool-off
// has elapsed moves to half-open and admits exactly one probe.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.openFor {
			return false
		}
		b.transitionLocked(ctx, HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// Report records the outcome of an admitted call.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		b.probing = false
		if success {
			b.transitionLocked(ctx, Closed)
		} else {
			b.transitionLocked(ctx, Open)
		}
		return
	}

	if success {
		b.successes++
	} else {
		b.failures++
	}
	total := b.failures + b.successes
	if total < b.minRequests {
		return
	}
	if float64(b.failures)/float64(total) >= b.failureRatio {
		b.transitionLocked(ctx, Open)
		return
	}
	// Halve the window so old successes do not mask a fresh outage forever.
	if total > b.minRequests*2 {
		b.successes = (b.successes + 1) / 2
		b.failures = (b.failures + 1) / 2
	}
}

// Backoff returns base*2^(attempt-1), spread by ±jitterPct (0.2 is 20%) and
// capped at 30s.
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	if jitterPct <= 0 {
		return d
	}
	delta := (rand.Float64()*2 - 1) * jitterPct * float64(d)
	return d + time.Duration(delta)
}

func (b *Breaker) transitionLocked(ctx context.Context, next State) {
	prev := b.state
	if prev == next {
		return
	}
	b.state = next
	b.failures, b.successes = 0, 0
	switch next {
	case Open:
		b.openedAt = b.now()
	case Closed:
		b.openedAt = time.Time{}
	}
	b.publishStateLocked()

	label := b.targetLabel()
	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(label, prev.String(), next.String()).Inc()
	}
	if next == Open && BreakerOpenedTotal != nil {
		BreakerOpenedTotal.WithLabelValues(label).Inc()
	}

	logger := &b.logger
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		logger = l
	}
	evt := logger.Warn()
	if next == Closed {
		evt = logger.Info()
	}
	evt = evt.Str("target", label).Str("from_state", prev.String()).Str("to_state", next.String())
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		evt = evt.Str("trace_id", sc.TraceID().String())
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) publishStateLocked() {
	if BreakerState != nil {
		BreakerState.WithLabelValues(b.targetLabel()).Set(b.state.gaugeValue())
	}
}

func (b *Breaker) targetLabel() string {
	if b.target == "" {
		return "default"
	}
	return b.target
}
