package logger

import (
	"context"
	"log/slog"
	"strings"
)

// secretKeys are always fully redacted.
var secretKeys = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"authorization",
}

// MaskingHandler redacts sensitive attributes before delegating. Secrets are
// replaced entirely; wallet addresses keep their edges so payout issues stay
// debuggable without logging the full address.
type MaskingHandler struct {
	next slog.Handler
}

func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MaskingHandler{next: h.next.WithAttrs(maskAttrs(attrs))}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr))
		return true
	})

	return h.next.Handle(ctx, masked)
}

func maskAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		out[i] = maskAttr(attr)
	}
	return out
}

func maskAttr(attr slog.Attr) slog.Attr {
	key := strings.ToLower(attr.Key)

	for _, secret := range secretKeys {
		if strings.Contains(key, secret) {
			attr.Value = slog.StringValue("***")
			return attr
		}
	}

	if strings.Contains(key, "wallet") {
		attr.Value = slog.StringValue(abbreviate(attr.Value.String()))
	}

	return attr
}

// abbreviate keeps the first and last four characters of an address.
func abbreviate(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// fanoutHandler duplicates records to several handlers.
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h.handlers {
		if next.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		wrapped[i] = next.WithAttrs(attrs)
	}

	return &fanoutHandler{handlers: wrapped}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		wrapped[i] = next.WithGroup(name)
	}

	return &fanoutHandler{handlers: wrapped}
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, next := range h.handlers {
		if !next.Enabled(ctx, record.Level) {
			continue
		}

		if err := next.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
