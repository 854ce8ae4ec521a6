package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/config"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/logging"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/lsp"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

// Version is set at build time with -ldflags.
var Version = "(dev) v0.0.0"

func main() {
	versionFlag := flag.Bool("version", false, "Print the version and exit")
	debug := flag.Bool("debug", false, "Log every JSON-RPC message")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("sectioncount language server %s\n", Version)
		return
	}

	cfg := config.Load()

	// stdout carries the protocol.
	var out io.Writer = os.Stderr
	var logPath *string
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Error("failed to open log file", "path", cfg.LogFile, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
		logPath = &cfg.LogFile
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, out)

	verbosity := 0
	if *debug {
		verbosity = 2
	}
	commonlog.Configure(verbosity, logPath)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
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

	server := lsp.NewServer(svc, stats.New(cfg.StatsWindow), log, Version)
	log.Info("starting sectioncount language server", "version", Version)
	if err := server.RunStdio(*debug); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
