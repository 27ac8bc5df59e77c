package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisURL    string `env:"REDIS_URL" validate:"required_if=Env production,required_if=Env staging"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	TokenSecret  string        `env:"TOKEN_SECRET,required" validate:"required,min=32"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"1h" validate:"required"`
	ResetBaseURL string        `env:"RESET_BASE_URL" envDefault:"http://localhost:8080"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"10" validate:"min=1"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`

	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" envDefault:"8" validate:"min=8"`
	BcryptCost        int `env:"BCRYPT_COST" envDefault:"13" validate:"min=12,max=31"`

	MailTimeout    time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	AuditRetention time.Duration `env:"AUDIT_RETENTION" envDefault:"720h"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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
