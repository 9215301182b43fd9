package middleware

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming updates.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// Handle returns a telebot middleware enforcing the per-user limit. Limiter
// failures fail open: a broken Redis must not silence the bot.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := sender.ID
		if m.rules.IsExempt(userID) {
			return next(c)
		}

		limit, window := m.rules.PerUserLimit()
		key := ratelimit.UserKey(userID)

		result, err := m.limiter.Check(context.Background(), key, limit, window)
		if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
			m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if result != nil && !result.Allowed {
			m.log.Warn("rate limit exceeded", slog.Int64("user_id", userID))
			return c.Send("⏳ Слишком много запросов. Попробуйте через минуту.")
		}

		return next(c)
	}
}
