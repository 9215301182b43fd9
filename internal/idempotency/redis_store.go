package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks which delivery keys have been processed.
type Store interface {
	Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	IsCompleted(ctx context.Context, key string) (bool, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	ReleaseLock(ctx context.Context, key string) error
}

// RedisStore keeps completion markers and processing locks in Redis.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStore creates a Redis-backed idempotency store.
func NewRedisStore(client *redis.Client, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{client: client, log: log}
}

// Lock takes the per-key processing lock via SetNX.
func (s *RedisStore) Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, lockKey(key), 1, lockTTL).Result()
	if err != nil {
		s.log.Error("failed to acquire delivery lock", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return acquired, nil
}

// IsCompleted reports whether a completion marker exists for the key.
func (s *RedisStore) IsCompleted(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, markerKey(key)).Result()
	if err != nil {
		s.log.Error("failed to check delivery marker", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return n > 0, nil
}

// MarkCompleted writes the completion marker with the dedupe TTL.
func (s *RedisStore) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, markerKey(key), 1, ttl).Err(); err != nil {
		s.log.Error("failed to store delivery marker", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

// ReleaseLock frees the processing lock.
func (s *RedisStore) ReleaseLock(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, lockKey(key)).Err(); err != nil {
		s.log.Error("failed to release delivery lock", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

func markerKey(key string) string {
	return fmt.Sprintf("delivery:%s:done", key)
}

func lockKey(key string) string {
	return fmt.Sprintf("delivery:%s:lock", key)
}
