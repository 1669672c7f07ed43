package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/resilience"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreakerTransitions(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	breaker := resilience.NewBreaker(2, 0.5, time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)

	require.Equal(t, resilience.Open, breaker.State())
	require.False(t, breaker.Allow(ctx), "open breaker rejects calls")

	clock.Advance(time.Minute)
	require.True(t, breaker.Allow(ctx), "cool-off elapsed, probe admitted")
	require.Equal(t, resilience.HalfOpen, breaker.State())
	breaker.Report(ctx, true)
	require.Equal(t, resilience.Closed, breaker.State())
	require.True(t, breaker.Allow(ctx))
}

func TestBreakerHalfOpenAdmitsSingleProbe(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	breaker := resilience.NewBreaker(1, 0.5, 10*time.Second).WithClock(clock.Now)
	ctx := context.Background()

	breaker.Report(ctx, false)
	clock.Advance(10 * time.Second)

	require.True(t, breaker.Allow(ctx))
	require.False(t, breaker.Allow(ctx), "second caller waits for the probe")

	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	require.False(t, breaker.Allow(ctx), "failed probe restarts the cool-off")
}

func TestBreakerStaysClosedBelowRatio(t *testing.T) {
	breaker := resilience.NewBreaker(4, 0.5, time.Minute)
	ctx := context.Background()
	for _, ok := range []bool{true, true, false, true, true, false} {
		require.True(t, breaker.Allow(ctx))
		breaker.Report(ctx, ok)
	}
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestBackoffWithJitter(t *testing.T) {
	base := 200 * time.Millisecond
	require.Equal(t, base, resilience.Backoff(base, 1, 0))
	require.Equal(t, base*4, resilience.Backoff(base, 3, 0))
	require.Equal(t, 30*time.Second, resilience.Backoff(base, 40, 0))

	d := resilience.Backoff(base, 2, 0.2)
	require.GreaterOrEqual(t, d, base*2-base*2/5)
	require.LessOrEqual(t, d, base*2+base*2/5)
}
