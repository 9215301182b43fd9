package logger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moonforge/worker-bot/pkg/config"
)

func TestNewBuildsTextLogger(t *testing.T) {
	log := New(config.Config{
		AppEnv: "test",
		Logger: config.LoggerConfig{Level: "debug", Format: "text"},
	})

	require.NotNil(t, log)
	log.Debug("logger ready")
}

func TestNewWithSentryFanout(t *testing.T) {
	log := New(config.Config{
		AppEnv: "test",
		Logger: config.LoggerConfig{Level: "info", Format: "json"},
		Sentry: config.SentryConfig{Enabled: true},
	})

	require.NotNil(t, log)
	// Without an initialized Sentry client the handler drops records; the
	// fanout path must still accept them.
	log.Warn("degraded upstream")
}
