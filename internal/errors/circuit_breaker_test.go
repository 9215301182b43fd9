package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStaysClosedUnderSuccess(t *testing.T) {
	cb := NewCircuitBreaker()

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerTripsAfterFailureRatio(t *testing.T) {
	cb := NewCircuitBreakerWith(BreakerSettings{MinCalls: 4, FailureRatio: 0.5, OpenFor: time.Hour})
	boom := errors.New("upstream down")

	for i := 0; i < 4; i++ {
		_ = cb.Call(func() error { return boom })
	}

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreakerWith(BreakerSettings{MinCalls: 2, FailureRatio: 0.5, OpenFor: time.Millisecond, ProbeCalls: 2})
	boom := errors.New("upstream down")

	for i := 0; i < 2; i++ {
		_ = cb.Call(func() error { return boom })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)

	require.NoError(t, cb.Call(func() error { return nil }))
	require.NoError(t, cb.Call(func() error { return nil }))

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := NewCircuitBreakerWith(BreakerSettings{MinCalls: 2, FailureRatio: 0.5, OpenFor: time.Millisecond})
	boom := errors.New("upstream down")

	for i := 0; i < 2; i++ {
		_ = cb.Call(func() error { return boom })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)

	assert.ErrorIs(t, cb.Call(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.State())
}
