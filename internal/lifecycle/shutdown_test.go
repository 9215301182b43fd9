package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteRunsAllHooks(t *testing.T) {
	s := NewShutdown(time.Second, testLogger())

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		s.Register("hook", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, int32(3), ran.Load())
}

func TestExecuteCollectsFailures(t *testing.T) {
	s := NewShutdown(time.Second, testLogger())
	s.Register("ok", func(context.Context) error { return nil })
	s.Register("db", func(context.Context) error { return errors.New("close failed") })

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: close failed")
}

func TestExecuteAppliesDeadline(t *testing.T) {
	s := NewShutdown(20*time.Millisecond, testLogger())
	s.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow")
}

func TestRegisterIgnoresNil(t *testing.T) {
	s := NewShutdown(0, testLogger())
	s.Register("noop", nil)
	require.NoError(t, s.Execute(context.Background()))
}
