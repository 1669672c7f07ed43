// Package lock provides a Redis lease used to keep periodic jobs, such as the
// exchange-rate refresh, to one worker replica per tick.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a crashed holder can keep the lease.
const DefaultTTL = 30 * time.Second

// releaseScript deletes the key only while it still holds our token, so a
// holder whose lease expired cannot release a newer holder's lease.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker takes leases with SET NX PX and a random token.
type Locker struct {
	R *redis.Client
}

// TryWithLock runs fn only if key is free right now and reports whether fn
// ran. A lease held elsewhere is not an error. The lease is released when fn
// returns, whatever its result.
func (l Locker) TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) (bool, error) {
	if l.R == nil {
		return false, errors.New("lock: redis client not configured")
	}
	if fn == nil {
		return false, errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	token := uuid.NewString()
	acquired, err := l.R.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, err
	}
	if !acquired {
		return false, nil
	}
	defer func() {
		// The caller's context may already be cancelled; release regardless.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.R, []string{key}, token).Err()
	}()
	return true, fn(ctx)
}
