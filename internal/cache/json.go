// Package cache holds the Redis-backed JSON read cache shared by the catalog
// and dashboard services.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSON wraps Redis helpers for JSON payloads. A nil *JSON or one without a
// client is a valid no-op cache.
type JSON struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a cache helper.
func New(client *redis.Client, ttl time.Duration) *JSON {
	return &JSON{client: client, ttl: ttl}
}

// Enabled reports whether reads and writes reach Redis.
func (c *JSON) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *JSON) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *JSON) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Delete drops keys; missing keys are not an error.
func (c *JSON) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
