package fx

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores the last resolved quote. Freshness is decided by the Provider
// from Quote.FetchedAt, so implementations only need to remember the value.
type Cache interface {
	Get(ctx context.Context) (Quote, bool)
	Set(ctx context.Context, q Quote, ttl time.Duration)
}

// MemoryCache keeps the quote in process memory.
type MemoryCache struct {
	v atomic.Pointer[Quote]
}

// Get returns the stored quote, if any.
func (c *MemoryCache) Get(context.Context) (Quote, bool) {
	q := c.v.Load()
	if q == nil {
		return Quote{}, false
	}
	return *q, true
}

// Set replaces the stored quote. Concurrent writers race; the last one wins.
func (c *MemoryCache) Set(_ context.Context, q Quote, _ time.Duration) {
	c.v.Store(&q)
}

// RedisCache shares the quote between api replicas and the worker.
type RedisCache struct {
	Client *redis.Client
	Key    string
	Logger *zerolog.Logger
}

func (c RedisCache) logger() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

func (c RedisCache) key() string {
	if c.Key != "" {
		return c.Key
	}
	return "fx:quote:" + DefaultPair
}

// Get loads the quote from Redis. Any Redis or decode failure is a miss.
func (c RedisCache) Get(ctx context.Context) (Quote, bool) {
	if c.Client == nil {
		return Quote{}, false
	}
	data, err := c.Client.Get(ctx, c.key()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger().Debug().Err(err).Str("key", c.key()).Msg("fx_cache_read_failed")
		}
		return Quote{}, false
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		c.logger().Debug().Err(err).Str("key", c.key()).Msg("fx_cache_decode_failed")
		return Quote{}, false
	}
	return q, true
}

// Set stores the quote with the given expiry. A failed write is logged; the
// next read misses and refetches.
func (c RedisCache) Set(ctx context.Context, q Quote, ttl time.Duration) {
	if c.Client == nil {
		return
	}
	data, err := json.Marshal(q)
	if err != nil {
		c.logger().Warn().Err(err).Msg("fx_cache_encode_failed")
		return
	}
	if err := c.Client.Set(ctx, c.key(), data, ttl).Err(); err != nil {
		c.logger().Warn().Err(err).Str("key", c.key()).Msg("fx_cache_write_failed")
	}
}
