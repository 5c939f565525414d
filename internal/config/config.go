package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 描述服务器运行时所需的关键配置。
type Config struct {
	BindAddr      string `env:"BIND_ADDR" envDefault:":8080"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	ContentDir    string `env:"CONTENT_DIR" envDefault:"content"`
	SeedFile      string `env:"SEED_FILE"`

	HistoryBackend string        `env:"HISTORY_BACKEND" envDefault:"memory"`
	HistoryDir     string        `env:"HISTORY_DIR" envDefault:"history"`
	HistoryDB      string        `env:"HISTORY_DB" envDefault:"history.db"`
	RedisURL       string        `env:"REDIS_URL"`
	HistoryTTL     time.Duration `env:"HISTORY_TTL" envDefault:"720h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load 从环境变量读取配置，并提供合理的默认值。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.AdminPassword == "" {
		return Config{}, errors.New("ADMIN_PASSWORD is required")
	}

	switch cfg.HistoryBackend {
	case "memory", "file", "sqlite":
	case "redis":
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL is required for the redis history backend")
		}
	default:
		return Config{}, fmt.Errorf("unsupported HISTORY_BACKEND: %s", cfg.HistoryBackend)
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("unsupported LOG_FORMAT: %s", cfg.LogFormat)
	}

	return cfg, nil
}

// SlogLevel 将 LOG_LEVEL 转换为 slog.Level。
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
