package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := New(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, KeyCategories, []string{"Eletrônicos"}))

	var got []string
	ok, err := c.GetJSON(ctx, KeyCategories, &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"Eletrônicos"}, got)

	mr.FastForward(2 * time.Minute)
	ok, err = c.GetJSON(ctx, KeyCategories, &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := New(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, KeyDashboard, map[string]int{"openOrdersCount": 2}))
	require.NoError(t, c.Delete(ctx, KeyDashboard))
	require.False(t, mr.Exists(KeyDashboard))
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *JSON
	ctx := context.Background()
	require.False(t, c.Enabled())
	require.NoError(t, c.SetJSON(ctx, "k", 1))
	ok, err := c.GetJSON(ctx, "k", new(int))
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Delete(ctx, "k"))
}
