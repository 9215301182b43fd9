// Package workercache provides Redis-backed caching for worker profiles.
package workercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/moonforge/worker-bot/internal/domain"
)

// Cache fronts the worker repository with a short-lived Redis cache keyed by
// Telegram id. Mutating paths must call Invalidate after a write.
type Cache struct {
	client *redis.Client
}

// NewCache constructs a worker cache backed by the provided Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get fetches a cached worker profile if it exists.
func (c *Cache) Get(ctx context.Context, telegramID int64) (*domain.Worker, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(telegramID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached worker: %w", err)
	}

	var worker domain.Worker
	if err := json.Unmarshal(data, &worker); err != nil {
		return nil, fmt.Errorf("decode cached worker: %w", err)
	}

	return &worker, nil
}

// Set stores the worker profile in cache for the provided TTL.
func (c *Cache) Set(ctx context.Context, telegramID int64, worker *domain.Worker, ttl time.Duration) error {
	if c == nil || c.client == nil || worker == nil {
		return nil
	}

	payload, err := json.Marshal(worker)
	if err != nil {
		return fmt.Errorf("encode worker for cache: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(telegramID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set cached worker: %w", err)
	}

	return nil
}

// Invalidate drops the cached profile after a write.
func (c *Cache) Invalidate(ctx context.Context, telegramID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached worker: %w", err)
	}

	return nil
}

func cacheKey(telegramID int64) string {
	return fmt.Sprintf("worker:profile:%d", telegramID)
}
