// Command dataveild runs the anonymization HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dataveil/dataveil/api"
	"github.com/dataveil/dataveil/core"
)

func main() {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := core.LoadConfig()
	if err := cfg.EnsureDirs(); err != nil {
		logger.Error("Failed to create data directories", "error", err)
		os.Exit(1)
	}

	rules := core.DefaultRules()
	if path := os.Getenv("RULES_FILE"); path != "" {
		loaded, err := core.LoadRules(path)
		if err != nil {
			logger.Error("Failed to load rules file", "path", path, "error", err)
			os.Exit(1)
		}
		rules = loaded
		logger.Info("Loaded rule overrides", "path", path)
	}

	audit, err := core.NewAuditLogger(filepath.Join(cfg.OutputsDir, "audit.jsonl"), cfg.Environment == "dev")
	if err != nil {
		logger.Error("Failed to open audit log", "error", err)
		os.Exit(1)
	}
	defer audit.Close()

	srv := &http.Server{
		Addr:         getAddr(),
		Handler:      api.NewServer(cfg, rules, audit, logger).Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}

func getAddr() string {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}
