package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/bot/handlers"
	"github.com/moonforge/worker-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordUpdate(actionLabel(c), status, time.Since(start))

		return err
	}
}

// actionLabel collapses an update into a low-cardinality metric label:
// callback payloads lose their numeric suffix (approve_123 → approve_), slash
// commands keep only the command word, everything else is "text".
func actionLabel(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		data := strings.TrimSpace(cb.Data)
		if i := strings.LastIndexByte(data, '_'); i >= 0 && isDigits(data[i+1:]) {
			return data[:i+1]
		}
		return data
	}

	if text := c.Text(); strings.HasPrefix(text, "/") {
		command, _, _ := strings.Cut(text, " ")
		return command
	}

	if c.Text() != "" {
		return "text"
	}

	return "unknown"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
