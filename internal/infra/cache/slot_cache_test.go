package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
)

func newCache(t *testing.T, ttl time.Duration) (*SlotCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSlotCache(rdb, ttl), mr
}

func sampleSlots() []scheduling.Slot {
	start := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	return []scheduling.Slot{
		{StartTime: start, EndTime: start.Add(time.Hour), AvailableSpots: 2},
		{StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour), AvailableSpots: 1},
	}
}

// fill mimics a reader that missed and filled the cache.
func fill(t *testing.T, c *SlotCache, serviceID uint) {
	t.Helper()
	_, key, ok := c.Get(context.Background(), serviceID, "2026-05-20", nil)
	require.False(t, ok)
	require.NotEmpty(t, key)
	c.Set(context.Background(), key, sampleSlots())
}

func TestSlotCacheRoundTrip(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	_, key, ok := c.Get(ctx, 1, "2026-05-20", nil)
	assert.False(t, ok)

	c.Set(ctx, key, sampleSlots())

	got, gotKey, ok := c.Get(ctx, 1, "2026-05-20", nil)
	require.True(t, ok)
	assert.Equal(t, key, gotKey)
	assert.Equal(t, sampleSlots(), got)

	staffID := uint(3)
	_, staffKey, ok := c.Get(ctx, 1, "2026-05-20", &staffID)
	assert.False(t, ok, "staff filtered lookups use their own key")
	assert.NotEqual(t, key, staffKey)
}

func TestSlotCacheInvalidate(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	fill(t, c, 1)
	fill(t, c, 2)

	c.Invalidate(ctx, 1)

	_, _, ok := c.Get(ctx, 1, "2026-05-20", nil)
	assert.False(t, ok)

	_, _, ok = c.Get(ctx, 2, "2026-05-20", nil)
	assert.True(t, ok)
}

func TestSlotCacheFillAfterInvalidateIsUnreachable(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	// A reader misses and starts computing slots from the old bookings.
	_, staleKey, ok := c.Get(ctx, 1, "2026-05-20", nil)
	require.False(t, ok)

	// A booking lands and bumps the version before the reader writes back.
	c.Invalidate(ctx, 1)
	c.Set(ctx, staleKey, sampleSlots())

	_, freshKey, ok := c.Get(ctx, 1, "2026-05-20", nil)
	assert.False(t, ok, "slots computed before the invalidation must not be served")
	assert.NotEqual(t, staleKey, freshKey)
}

func TestSlotCacheExpires(t *testing.T) {
	c, mr := newCache(t, 30*time.Second)
	ctx := context.Background()

	fill(t, c, 1)
	mr.FastForward(31 * time.Second)

	_, _, ok := c.Get(ctx, 1, "2026-05-20", nil)
	assert.False(t, ok)
}

func TestSlotCacheDisabled(t *testing.T) {
	ctx := context.Background()

	var nilCache *SlotCache
	nilCache.Set(ctx, "slots:1:v0:2026-05-20:any", sampleSlots())
	nilCache.Invalidate(ctx, 1)
	_, key, ok := nilCache.Get(ctx, 1, "2026-05-20", nil)
	assert.False(t, ok)
	assert.Empty(t, key)

	zeroTTL, mr := newCache(t, 0)
	_, key, ok = zeroTTL.Get(ctx, 1, "2026-05-20", nil)
	assert.False(t, ok)
	assert.Empty(t, key)
	zeroTTL.Set(ctx, "slots:1:v0:2026-05-20:any", sampleSlots())
	assert.False(t, mr.Exists("slots:1:v0:2026-05-20:any"))
}
