package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"aphorist/internal/config"
	"aphorist/internal/content"
	"aphorist/internal/history"
	"aphorist/internal/sampler"
	"aphorist/internal/server"
)

func main() {
	_ = godotenv.Load()

	bindFlag := flag.String("bind", "", "override bind address, e.g. :9090")
	contentFlag := flag.String("content-dir", "", "override content directory path")
	seedFlag := flag.String("seed", "", "import quotes from a YAML file on start")
	backendFlag := flag.String("history", "", "override pick history backend: memory, file, sqlite, redis")
	passwordFlag := flag.String("admin-password", "", "override admin password (for development only)")
	flag.Parse()

	overrides := map[string]string{
		"ADMIN_PASSWORD":  *passwordFlag,
		"BIND_ADDR":       *bindFlag,
		"CONTENT_DIR":     *contentFlag,
		"SEED_FILE":       *seedFlag,
		"HISTORY_BACKEND": *backendFlag,
	}
	for key, value := range overrides {
		if value != "" {
			_ = os.Setenv(key, value)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	setupLogger(cfg)

	store, err := content.NewStore(cfg.ContentDir)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	if cfg.SeedFile != "" {
		n, err := store.Import(cfg.SeedFile)
		if err != nil {
			log.Fatalf("import seed: %v", err)
		}
		slog.Info("seed imported", "file", cfg.SeedFile, "quotes", n)
	}

	slot, closeSlot, err := history.Open(context.Background(), history.Options{
		Backend:  history.Backend(cfg.HistoryBackend),
		Dir:      cfg.HistoryDir,
		DBPath:   cfg.HistoryDB,
		RedisURL: cfg.RedisURL,
		TTL:      cfg.HistoryTTL,
	})
	if err != nil {
		log.Fatalf("open history: %v", err)
	}
	defer func() {
		if err := closeSlot(); err != nil {
			slog.Error("close history", "error", err)
		}
	}()

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("get wd: %v", err)
	}

	tplDir := filepath.Join(cwd, "templates")
	s, err := server.New(cfg, store, sampler.NewPicker(slot), tplDir)
	if err != nil {
		log.Fatalf("create server: %v", err)
	}

	slog.Info("starting server", "addr", cfg.BindAddr, "history", cfg.HistoryBackend)
	if err := http.ListenAndServe(cfg.BindAddr, s); err != nil {
		slog.Error("server exited", "error", err)
	}
}

func setupLogger(cfg config.Config) {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
