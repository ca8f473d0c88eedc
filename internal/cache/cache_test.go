package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires redis on localhost:6379; skipped otherwise
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) *Cache {
	t.Helper()

	ctx := context.Background()
	c, err := Connect(ctx, testRedisAddr, prefix, time.Minute)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() {
		c.DeletePattern(ctx, "*")
		c.Close()
	})
	require.NoError(t, c.DeletePattern(ctx, "*"))
	return c
}

type summary struct {
	SKU  string `json:"sku"`
	Sold int    `json:"sold"`
}

func TestNew(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	defer client.Close()

	c := New(client, "test:", 10*time.Minute)
	assert.Equal(t, "test:", c.prefix)
	assert.Equal(t, 10*time.Minute, c.ttl)
	assert.Equal(t, StatsSnapshot{}, c.GetStats())
}

func TestGetSetRoundTrip(t *testing.T) {
	c := setupTestCache(t, "test:roundtrip:")
	ctx := context.Background()

	var got summary
	found, err := c.Get(ctx, "report:product:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "report:product:1", summary{SKU: "WIDGET-1", Sold: 4}))

	found, err = c.Get(ctx, "report:product:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, summary{SKU: "WIDGET-1", Sold: 4}, got)

	stats := c.GetStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 50.0, stats.HitRate, 0.001)
}

func TestDeletePatternOnlyTouchesMatchingKeys(t *testing.T) {
	c := setupTestCache(t, "test:pattern:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "report:fleet:all", summary{SKU: "A"}))
	require.NoError(t, c.Set(ctx, "report:product:1", summary{SKU: "B"}))
	require.NoError(t, c.Set(ctx, "session:1", summary{SKU: "C"}))

	require.NoError(t, c.DeletePattern(ctx, "report:*"))

	var got summary
	found, _ := c.Get(ctx, "report:fleet:all", &got)
	assert.False(t, found)
	found, _ = c.Get(ctx, "report:product:1", &got)
	assert.False(t, found)
	found, _ = c.Get(ctx, "session:1", &got)
	assert.True(t, found)
}

func TestDeletePatternBumpsGeneration(t *testing.T) {
	c := setupTestCache(t, "test:generation:")
	ctx := context.Background()

	before, err := c.Generation(ctx)
	require.NoError(t, err)

	require.NoError(t, c.DeletePattern(ctx, "report:*"))
	require.NoError(t, c.DeletePattern(ctx, "report:*"))

	after, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+2, after)
}
