package errors

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy controls how WithRetry backs off between attempts. Delay
// doubles per attempt and is capped at MaxDelay.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy covers short outbound hiccups: up to three retries,
// 100ms/200ms/400ms apart.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  3,
	BaseDelay: 100 * time.Millisecond,
	MaxDelay:  5 * time.Second,
}

// WithRetry runs fn under the default policy, retrying while the error is
// marked retryable. The context cancels waits between attempts.
func WithRetry(ctx context.Context, fn func() error) error {
	return RetryWith(ctx, DefaultRetryPolicy, fn)
}

// RetryWith runs fn under the given policy. The last error is returned when
// all attempts are exhausted; non-retryable errors return immediately.
func RetryWith(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) || attempt >= policy.Attempts {
			return err
		}

		if waitErr := sleepFor(ctx, policy.delay(attempt)); waitErr != nil {
			return waitErr
		}
	}
}

// IsRetryable reports whether the error carries the retryable flag.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}
	return false
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func sleepFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
