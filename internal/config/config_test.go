package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Errorf("unexpected bind addr %q", cfg.BindAddr)
	}
	if cfg.ContentDir != "content" {
		t.Errorf("unexpected content dir %q", cfg.ContentDir)
	}
	if cfg.HistoryBackend != "memory" {
		t.Errorf("unexpected history backend %q", cfg.HistoryBackend)
	}
	if cfg.HistoryTTL != 720*time.Hour {
		t.Errorf("unexpected history ttl %v", cfg.HistoryTTL)
	}
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelInfo {
		t.Errorf("unexpected log level %v (%v)", level, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("BIND_ADDR", ":9090")
	t.Setenv("HISTORY_BACKEND", "sqlite")
	t.Setenv("HISTORY_DB", "/tmp/picks.db")
	t.Setenv("HISTORY_TTL", "1h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BindAddr != ":9090" || cfg.HistoryBackend != "sqlite" || cfg.HistoryDB != "/tmp/picks.db" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.HistoryTTL != time.Hour {
		t.Errorf("unexpected ttl %v", cfg.HistoryTTL)
	}
	if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("unexpected level %v", level)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing password", env: map[string]string{"ADMIN_PASSWORD": ""}},
		{name: "unknown backend", env: map[string]string{"HISTORY_BACKEND": "etcd"}},
		{name: "redis without url", env: map[string]string{"HISTORY_BACKEND": "redis", "REDIS_URL": ""}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "bad ttl", env: map[string]string{"HISTORY_TTL": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_PASSWORD", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
