package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonforge/worker-bot/internal/jobs"
)

type fakeResetter struct {
	got   time.Duration
	reset int64
	err   error
}

func (f *fakeResetter) ResetStaleSteps(_ context.Context, olderThan time.Duration) (int64, error) {
	f.got = olderThan
	return f.reset, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStepCleanupResetsStale(t *testing.T) {
	resetter := &fakeResetter{reset: 3}
	h := NewStepCleanupHandler(resetter, discard())

	task, err := jobs.NewStepCleanupTask(6 * time.Hour)
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 6*time.Hour, resetter.got)
}

func TestStepCleanupDefaultsAge(t *testing.T) {
	resetter := &fakeResetter{}
	h := NewStepCleanupHandler(resetter, discard())

	task := asynq.NewTask(jobs.TaskTypeStepCleanup, []byte(`{}`))
	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 24*time.Hour, resetter.got)
}

func TestStepCleanupSurfacesRepoError(t *testing.T) {
	resetter := &fakeResetter{err: errors.New("db down")}
	h := NewStepCleanupHandler(resetter, discard())

	task, err := jobs.NewStepCleanupTask(time.Hour)
	require.NoError(t, err)

	assert.Error(t, h.ProcessTask(context.Background(), task))
}

func TestStepCleanupRejectsMalformedPayload(t *testing.T) {
	h := NewStepCleanupHandler(&fakeResetter{}, discard())

	task := asynq.NewTask(jobs.TaskTypeStepCleanup, []byte(`{`))
	assert.Error(t, h.ProcessTask(context.Background(), task))
}
