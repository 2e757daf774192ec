package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
)

// SlotCache keeps generated slots in Redis. Every key embeds a per-service
// version, so Invalidate only has to bump the version and stale entries
// expire on their own.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func (c *SlotCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

func versionKey(serviceID uint) string {
	return fmt.Sprintf("slots:%d:version", serviceID)
}

func (c *SlotCache) key(ctx context.Context, serviceID uint, date string, staffID *uint) (string, error) {
	version, err := c.rdb.Get(ctx, versionKey(serviceID)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}

	staff := "any"
	if staffID != nil {
		staff = fmt.Sprintf("%d", *staffID)
	}
	return fmt.Sprintf("slots:%d:v%d:%s:%s", serviceID, version, date, staff), nil
}

// Get returns the cached slots and the versioned key they live under. On a
// miss the key is what Set should fill.
func (c *SlotCache) Get(ctx context.Context, serviceID uint, date string, staffID *uint) ([]scheduling.Slot, string, bool) {
	if !c.enabled() {
		return nil, "", false
	}

	key, err := c.key(ctx, serviceID, date, staffID)
	if err != nil {
		log.Warn().Err(err).Uint("service_id", serviceID).Msg("slot cache version lookup failed")
		return nil, "", false
	}

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("slot cache read failed")
		}
		return nil, key, false
	}

	var slots []scheduling.Slot
	if err := json.Unmarshal(val, &slots); err != nil {
		return nil, key, false
	}
	return slots, key, true
}

func (c *SlotCache) Set(ctx context.Context, key string, slots []scheduling.Slot) {
	if !c.enabled() || key == "" {
		return
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("slot cache write failed")
	}
}

// Invalidate drops every cached day of the service.
func (c *SlotCache) Invalidate(ctx context.Context, serviceID uint) {
	if !c.enabled() {
		return
	}

	if err := c.rdb.Incr(ctx, versionKey(serviceID)).Err(); err != nil {
		log.Warn().Err(err).Uint("service_id", serviceID).Msg("slot cache invalidation failed")
	}
}

var _ scheduling.SlotCache = (*SlotCache)(nil)
