// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the worker bot.
type Config struct {
	AppEnv string

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Pricefeed PricefeedConfig `mapstructure:"pricefeed"`
	Deposit   DepositConfig   `mapstructure:"deposit"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// BotConfig configures the Telegram transport and the admin allow-list.
type BotConfig struct {
	Token         string        `mapstructure:"token" validate:"required"`
	Mode          string        `mapstructure:"mode" validate:"oneof=webhook longpoll"`
	Timeout       time.Duration `mapstructure:"timeout"`
	WebhookURL    string        `mapstructure:"webhook_url"`
	WebhookListen string        `mapstructure:"webhook_listen"`
	AdminChatID   int64         `mapstructure:"admin_chat_id" validate:"required"`
	AdminIDs      []int64       `mapstructure:"admin_ids" validate:"required,min=1"`
	Zone          string        `mapstructure:"zone" validate:"required,hostname"`
}

// AdminSet returns the admin allow-list as a lookup set.
func (b BotConfig) AdminSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(b.AdminIDs))
	for _, id := range b.AdminIDs {
		set[id] = struct{}{}
	}

	return set
}

// ServerConfig configures the ops HTTP server (health, metrics, deposit webhook).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host          string `mapstructure:"host" validate:"required"`
	Port          string `mapstructure:"port" validate:"required"`
	User          string `mapstructure:"user" validate:"required"`
	Password      string `mapstructure:"password" validate:"required"`
	Name          string `mapstructure:"name" validate:"required"`
	SSLMode       string `mapstructure:"sslmode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}

// RedisConfig configures the Redis connection used for locks, idempotency,
// rate limiting, worker cache, and the price cache.
type RedisConfig struct {
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// LoggerConfig configures slog output.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	DSN     string  `mapstructure:"dsn"`
	Rate    float64 `mapstructure:"sample_rate"`
}

// RateLimitConfig configures per-user update throttling.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// PricefeedConfig configures the SOL/USD price oracle client.
type PricefeedConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DepositConfig configures the inbound deposit webhook.
type DepositConfig struct {
	Secret string `mapstructure:"secret"`
}

// JobsConfig configures the asynq background worker and scheduler.
type JobsConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Concurrency      int           `mapstructure:"concurrency"`
	PriceRefreshCron string        `mapstructure:"price_refresh_cron"`
	StepCleanupCron  string        `mapstructure:"step_cleanup_cron"`
	StaleStepAge     time.Duration `mapstructure:"stale_step_age"`
}
