package fx

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TypeRefresh is the asynq task type that refreshes the shared quote.
const TypeRefresh = "fx:refresh"

// NewRefreshTask builds the periodic refresh task.
func NewRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeRefresh, nil)
}

// Locker runs fn only if the named lock can be taken right away.
type Locker interface {
	TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) (bool, error)
}

// RefreshHandler refreshes the provider's cache from the feed. Only one
// worker replica does the fetch per tick; the others see the lock held and skip.
type RefreshHandler struct {
	Provider *Provider
	Locker   Locker
	LockKey  string
	LockTTL  time.Duration
	Logger   zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h RefreshHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if h.Provider == nil {
		return errors.New("fx: refresh handler has no provider")
	}
	run := func(ctx context.Context) error {
		q := h.Provider.Refresh(ctx)
		h.Logger.Info().
			Str("pair", q.Pair).
			Str("base", q.Base.StringFixed(4)).
			Str("adjusted", q.Adjusted.StringFixed(2)).
			Bool("fallback", q.Fallback).
			Msg("fx_rate_refreshed")
		return nil
	}
	if h.Locker == nil {
		return run(ctx)
	}
	key := h.LockKey
	if key == "" {
		key = "lock:" + TypeRefresh
	}
	ttl := h.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	acquired, err := h.Locker.TryWithLock(ctx, key, ttl, run)
	if err != nil {
		return err
	}
	if !acquired {
		h.Logger.Debug().Str("lock", key).Msg("fx_refresh_skipped")
	}
	return nil
}
