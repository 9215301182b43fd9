// Package logger configures structured logging for the worker bot.
package logger

import (
	"io"
	"log/slog"
	"os"

	slogsentry "github.com/samber/slog-sentry/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/moonforge/worker-bot/pkg/config"
)

// New builds a slog.Logger according to the logger section of the config.
// Sensitive attributes are masked; when Sentry is enabled, warn-and-above
// records are fanned out to it as breadcrumb events.
func New(cfg config.Config) *slog.Logger {
	level := parseLevel(cfg.Logger.Level)

	var out io.Writer = os.Stdout
	if cfg.Logger.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Logger.File,
			MaxSize:    orDefault(cfg.Logger.MaxSizeMB, 50),
			MaxBackups: orDefault(cfg.Logger.MaxBackups, 5),
			MaxAge:     orDefault(cfg.Logger.MaxAgeDays, 14),
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logger.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	handler = NewMaskingHandler(handler)

	if cfg.Sentry.Enabled {
		sentryHandler := slogsentry.Option{Level: slog.LevelWarn}.NewSentryHandler()
		handler = newFanoutHandler(handler, NewMaskingHandler(sentryHandler))
	}

	log := slog.New(handler).With(slog.String("env", cfg.AppEnv))
	slog.SetDefault(log)

	return log
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
