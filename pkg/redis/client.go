// Package redis builds the shared Redis client used for worker-state locks,
// idempotency markers, rate limits, and caches.
package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/moonforge/worker-bot/pkg/config"
)

const connectTimeout = 5 * time.Second

// Client owns the underlying go-redis client. Consumers receive the embedded
// *redis.Client; this wrapper exists so main holds a single closeable handle.
type Client struct {
	*redis.Client
}

// New connects to Redis and verifies the connection before returning. The
// ping is bounded so a dead Redis fails startup fast instead of hanging.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Client{rdb}, nil
}

// Close shuts down the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
