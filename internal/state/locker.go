package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	workerLockKeyPattern = "worker:lock:%d"
	lockTTL              = 5 * time.Second
)

// Locker serializes workflow processing per worker using Redis SetNX locks.
// Holding the lock makes the engine's check-then-act sequences (domain
// uniqueness, pending-withdrawal check) atomic per worker.
type Locker struct {
	client *redis.Client
	log    *slog.Logger
}

// NewLocker creates a Redis-backed per-worker lock.
func NewLocker(client *redis.Client, log *slog.Logger) *Locker {
	if log == nil {
		log = slog.Default()
	}

	return &Locker{
		client: client,
		log:    log,
	}
}

// Acquire takes the per-worker lock or returns ErrLocked when it is held.
// With no Redis client configured the lock degrades to a no-op.
func (l *Locker) Acquire(ctx context.Context, workerID int64) error {
	if l == nil || l.client == nil {
		return nil
	}

	key := fmt.Sprintf(workerLockKeyPattern, workerID)
	acquired, err := l.client.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		l.log.Error("failed to acquire worker lock", "worker_id", workerID, "error", err)
		return err
	}

	if !acquired {
		l.log.Warn("worker lock already held", "worker_id", workerID)
		return ErrLocked
	}

	return nil
}

// Release frees the per-worker lock.
func (l *Locker) Release(ctx context.Context, workerID int64) {
	if l == nil || l.client == nil {
		return
	}

	key := fmt.Sprintf(workerLockKeyPattern, workerID)
	if err := l.client.Del(ctx, key).Err(); err != nil {
		l.log.Error("failed to release worker lock", "worker_id", workerID, "error", err)
	}
}
