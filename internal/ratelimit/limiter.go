// Package ratelimit throttles inbound bot updates per Telegram user.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLimitExceeded indicates the rate limit has been reached for the key.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter evaluates a sliding-window counter for a key. Implementations must
// be safe for concurrent use.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// UserKey builds the throttling key for a Telegram user so that Redis and
// in-memory limiters count the same buckets.
func UserKey(telegramID int64) string {
	return fmt.Sprintf("user:%d", telegramID)
}
