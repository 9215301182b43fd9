package errors

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newQuietHandler() *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestHandleNilError(t *testing.T) {
	msg, retryable := newQuietHandler().Handle(context.Background(), nil)

	assert.Empty(t, msg)
	assert.False(t, retryable)
}

func TestHandleAppErrorReturnsUserMessage(t *testing.T) {
	msg, retryable := newQuietHandler().Handle(context.Background(), NewDatabaseError(errors.New("down")))

	assert.Equal(t, "Временная проблема, попробуйте позже", msg)
	assert.True(t, retryable)
}

func TestHandleUnknownErrorFallsBack(t *testing.T) {
	msg, retryable := newQuietHandler().Handle(context.Background(), errors.New("unexpected"))

	assert.Equal(t, fallbackUserMessage, msg)
	assert.False(t, retryable)
}

func TestClassifyWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	appErr := classify(cause)

	assert.Equal(t, "E000", appErr.Code)
	assert.Equal(t, SeverityHigh, appErr.Severity)
	assert.ErrorIs(t, appErr, cause)
}
