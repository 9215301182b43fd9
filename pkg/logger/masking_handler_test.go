package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newCapturedLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := NewMaskingHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return slog.New(handler), &buf
}

func TestMaskingHandlerRedactsSecrets(t *testing.T) {
	log, buf := newCapturedLogger()

	log.Info("config loaded",
		slog.String("bot_token", "123456:ABCDEF"),
		slog.String("webhook_secret", "hunter2"),
		slog.String("zone", "moonforge.app"),
	)

	out := buf.String()
	assert.NotContains(t, out, "123456:ABCDEF")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "moonforge.app")
}

func TestMaskingHandlerAbbreviatesWallets(t *testing.T) {
	log, buf := newCapturedLogger()

	log.Info("withdrawal requested",
		slog.String("wallet_address", "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"),
	)

	out := buf.String()
	assert.NotContains(t, out, "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	assert.Contains(t, out, "9xQe")
	assert.Contains(t, out, "VFin")
}

func TestMaskingHandlerShortWalletFullyMasked(t *testing.T) {
	log, buf := newCapturedLogger()

	log.Info("withdrawal requested", slog.String("wallet_address", "short"))

	assert.NotContains(t, buf.String(), "wallet_address=short")
}
