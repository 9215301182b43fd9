// Package middleware provides transport-level guards applied to every bot
// update: redelivery dedupe, throttling, and metrics.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/bot/handlers"
	"github.com/moonforge/worker-bot/internal/idempotency"
)

// Telegram redelivers updates when the webhook response is slow or fails, so
// every update is deduplicated by its natural key for this long.
const dedupeTTL = 24 * time.Hour

// Idempotency ensures handlers execute at most once per Telegram update.
func Idempotency(manager idempotency.Manager, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			key := updateKey(c)
			if key == "" {
				return next(c)
			}

			result, err := manager.Execute(context.Background(), key, dedupeTTL, func(context.Context) error {
				return next(c)
			})
			if err != nil {
				if errors.Is(err, idempotency.ErrInProgress) {
					return nil
				}
				return err
			}

			if result.Duplicate {
				log.Info("dropped redelivered update", slog.String("key", key))
			}

			return nil
		}
	}
}

// updateKey derives the natural dedupe key of an update: the callback-query
// id when present, otherwise chat id + message id.
func updateKey(c telebot.Context) string {
	if c == nil {
		return ""
	}

	if cb := c.Callback(); cb != nil {
		if cb.ID != "" {
			return fmt.Sprintf("cb:%s", cb.ID)
		}

		if cb.Message != nil {
			chatID := int64(0)
			if cb.Message.Chat != nil {
				chatID = cb.Message.Chat.ID
			}
			return fmt.Sprintf("cb-msg:%d:%d", chatID, cb.Message.ID)
		}
	}

	if msg := c.Message(); msg != nil && msg.ID != 0 {
		chatID := int64(0)
		if msg.Chat != nil {
			chatID = msg.Chat.ID
		}
		return fmt.Sprintf("msg:%d:%d", chatID, msg.ID)
	}

	return ""
}
