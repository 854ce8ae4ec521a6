package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/api"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/config"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/logging"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

func main() {
	cfg := config.Load()

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Error("failed to open log file", "path", cfg.LogFile, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, out)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize settings.
	store, closeStore, err := settings.OpenStore(ctx, cfg.SettingsBackend, cfg.SettingsPath)
	if err != nil {
		log.Error("failed to open settings store", "backend", cfg.SettingsBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := settings.NewService(store, log)
	if err := svc.Load(ctx); err != nil {
		log.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	// Initialize HTTP server.
	srv := api.NewServer(svc, stats.New(cfg.StatsWindow), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		srv.Close()
	}()

	log.Info("starting sectioncount",
		"port", cfg.Port,
		"settings_backend", cfg.SettingsBackend,
		"auth", cfg.APIKey != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
