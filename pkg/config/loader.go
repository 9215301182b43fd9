package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config.
func Load() (*Config, *viper.Viper, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// env files are optional
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	applyDefaults(&cfg)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, v, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "longpoll"
	}
	if cfg.Bot.Timeout == 0 {
		cfg.Bot.Timeout = 10 * time.Second
	}
	if cfg.Bot.WebhookListen == "" {
		cfg.Bot.WebhookListen = ":8443"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "text"
	}
	if cfg.Database.MigrationsDir == "" {
		cfg.Database.MigrationsDir = "migrations"
	}
	if cfg.Pricefeed.BaseURL == "" {
		cfg.Pricefeed.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Pricefeed.Timeout == 0 {
		cfg.Pricefeed.Timeout = 5 * time.Second
	}
	if cfg.Pricefeed.CacheTTL == 0 {
		cfg.Pricefeed.CacheTTL = time.Minute
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 20
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Jobs.Concurrency == 0 {
		cfg.Jobs.Concurrency = 10
	}
	if cfg.Jobs.PriceRefreshCron == "" {
		cfg.Jobs.PriceRefreshCron = "*/5 * * * *"
	}
	if cfg.Jobs.StepCleanupCron == "" {
		cfg.Jobs.StepCleanupCron = "0 * * * *"
	}
	if cfg.Jobs.StaleStepAge == 0 {
		cfg.Jobs.StaleStepAge = 24 * time.Hour
	}
}
