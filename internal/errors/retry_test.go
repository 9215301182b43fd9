package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	calls := 0
	err := RetryWith(context.Background(), fastPolicy, func() error {
		calls++
		if calls < 3 {
			return NewExternalAPIError("pricefeed", errors.New("timeout"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	err := RetryWith(context.Background(), fastPolicy, func() error {
		calls++
		return NewValidationError("bad subdomain")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	boom := NewDatabaseError(errors.New("connection refused"))
	err := RetryWith(context.Background(), fastPolicy, func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWith(ctx, RetryPolicy{Attempts: 2, BaseDelay: time.Minute, MaxDelay: time.Minute}, func() error {
		return NewDatabaseError(errors.New("down"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewDatabaseError(errors.New("down"))))
	assert.True(t, IsRetryable(NewExternalAPIError("telegram", nil)))
	assert.False(t, IsRetryable(NewValidationError("bad input")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}
