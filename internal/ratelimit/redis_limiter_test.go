package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) Limiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLimiter(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRedisLimiterAllowsUnderLimit(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := l.Check(ctx, "user:100", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should pass", i+1)
	}
}

func TestRedisLimiterBlocksOverLimit(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Check(ctx, "user:100", 3, time.Minute)
		require.NoError(t, err)
	}

	result, err := l.Check(ctx, "user:100", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
}

func TestRedisLimiterKeysAreIndependent(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()

	_, err := l.Check(ctx, "user:100", 1, time.Minute)
	require.NoError(t, err)

	result, err := l.Check(ctx, "user:200", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiterBlocksOverLimit(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := l.Check(ctx, "user:100", 2, time.Minute)
		require.NoError(t, err)
	}

	result, err := l.Check(ctx, "user:100", 2, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
}
