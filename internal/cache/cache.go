// Package cache provides Redis-backed caching for device read accessors.
//
// Fleet reads against the ACS are comparatively expensive (the full device
// tree is serialized per request), so the proxy accessors cache short-lived
// snapshots. A missing or unreachable Redis degrades to direct reads.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cpemgr:cache:"

// Cache provides Redis-backed response caching.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a new Redis-backed cache.
func New(redisURL string, logger *slog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Cache{
		client: client,
		logger: logger.With("component", "device_cache"),
	}, nil
}

// GetJSON retrieves and unmarshals a cached JSON value. Returns false on a
// cache miss.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals and stores a JSON value with the given TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

// InvalidateDevice drops cached reads for one device and the fleet listing.
// Called after a dispatch so operators see their change on the next read.
func (c *Cache) InvalidateDevice(ctx context.Context, deviceID string) {
	keys := []string{
		keyPrefix + "device:" + deviceID,
		keyPrefix + "devices:all",
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug("cache invalidation failed", "device_id", deviceID, "error", err)
	}
}
