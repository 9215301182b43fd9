package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/moonforge/worker-bot/pkg/logger"
	"github.com/moonforge/worker-bot/pkg/metrics"
)

const fallbackUserMessage = "Произошла ошибка. Попробуйте позже"

// Handler converts errors into a user-facing notice and routes them to the
// log and, for high-severity application errors, to Sentry.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, sentryEnabled: sentryEnabled}
}

// Handle logs err and returns the message to show the user plus whether the
// failed operation may be retried.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	appErr := classify(err)
	metrics.RecordError(appErr.Code, string(appErr.Severity))

	attrs := []slog.Attr{
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	h.log.LogAttrs(ctx, slog.LevelError, "update failed", attrs...)

	if h.sentryEnabled && reportable(appErr) {
		h.report(err, appErr)
	}

	msg := appErr.UserMessage
	if msg == "" {
		msg = fallbackUserMessage
	}

	return msg, appErr.Retryable
}

// classify normalizes any error into an AppError. Errors from outside the
// taxonomy are treated as high-severity internal faults.
func classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr
	}

	return &AppError{
		Code:        "E000",
		Message:     err.Error(),
		UserMessage: fallbackUserMessage,
		Severity:    SeverityHigh,
		Retryable:   false,
		cause:       err,
	}
}

// reportable keeps Sentry for faults that need a human: critical and high
// severity, and everything without a code (unclassified).
func reportable(appErr *AppError) bool {
	switch appErr.Severity {
	case SeverityCritical, SeverityHigh:
		return true
	}
	return appErr.Code == "" || appErr.Code == "E000"
}

func (h *Handler) report(err error, appErr *AppError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		if appErr.Code != "" {
			scope.SetTag("code", appErr.Code)
		}
		if appErr.Severity != "" {
			scope.SetTag("severity", string(appErr.Severity))
		}
		sentry.CaptureException(err)
	})
}
