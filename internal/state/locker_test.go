package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	locker := NewLocker(client, testLogger())

	if err := locker.Acquire(ctx, 42); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if err := locker.Acquire(ctx, 42); !errors.Is(err, ErrLocked) {
		t.Fatalf("second acquire: expected ErrLocked, got %v", err)
	}

	// A different worker is not affected by the held lock.
	if err := locker.Acquire(ctx, 43); err != nil {
		t.Fatalf("acquire for other worker failed: %v", err)
	}

	locker.Release(ctx, 42)
	if err := locker.Acquire(ctx, 42); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}

func TestLocker_NoRedisDegradesToNoop(t *testing.T) {
	ctx := context.Background()
	locker := NewLocker(nil, testLogger())

	if err := locker.Acquire(ctx, 1); err != nil {
		t.Fatalf("expected nil error without redis, got %v", err)
	}
	locker.Release(ctx, 1)
}
