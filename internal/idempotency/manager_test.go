package idempotency

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

func newTestManager(t *testing.T) Manager {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(NewRedisStore(client, log), log)
}

func TestExecuteRunsOperationOnce(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return nil
	}

	first, err := m.Execute(ctx, "cb-1", time.Minute, fn)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := m.Execute(ctx, "cb-1", time.Minute, fn)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	assert.Equal(t, 1, calls)
}

func TestExecuteDistinctKeysRunIndependently(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return nil
	}

	_, err := m.Execute(ctx, "cb-1", time.Minute, fn)
	require.NoError(t, err)
	_, err = m.Execute(ctx, "cb-2", time.Minute, fn)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestExecuteFailedOperationCanRetry(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	fails := true
	fn := func(ctx context.Context) error {
		if fails {
			fails = false
			return assert.AnError
		}
		return nil
	}

	_, err := m.Execute(ctx, "cb-1", time.Minute, fn)
	require.Error(t, err)

	result, err := m.Execute(ctx, "cb-1", time.Minute, fn)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func TestGenerateKeyIsDeterministic(t *testing.T) {
	a := GenerateKey("callback", int64(100), "traffic_instagram")
	b := GenerateKey("callback", int64(100), "traffic_instagram")
	c := GenerateKey("callback", int64(100), "traffic_tiktok")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
