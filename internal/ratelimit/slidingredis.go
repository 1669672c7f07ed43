package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindow is a Backend over Redis sorted sets. Every hit is a member
// scored by its timestamp; hits older than the window are trimmed first.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string
}

// Allow registers an event for the given key and returns whether it is within the limit.
func (l SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	now := time.Now()
	until := now.Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, until, nil
	}

	redisKey := l.Prefix + key
	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%d", now.Add(-window).UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, until, err
	}

	current := int(countCmd.Val())
	remaining := max - current
	if remaining < 0 {
		remaining = 0
	}
	return current <= max, remaining, until, nil
}
