package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/config"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/logging"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/vault"
)

func main() {
	cfg := config.Load()
	defaults := settings.Defaults()

	h1 := flag.Bool("h1", defaults.ShowH1, "Count level 1 header sections")
	h2 := flag.Bool("h2", defaults.ShowH2, "Count level 2 header sections")
	h3 := flag.Bool("h3", defaults.ShowH3, "Count level 3 header sections")
	words := flag.Bool("words", defaults.ShowWords, "Show word counts")
	chars := flag.Bool("chars", defaults.ShowChars, "Show character counts")
	pages := flag.Bool("pages", defaults.ShowPage, "Show page counts (300 words per page)")
	readingTime := flag.Bool("time", defaults.ShowReadingTime, "Show reading time (275 words per minute)")
	showOutline := flag.Bool("outline", false, "Print the nested section outline")
	asJSON := flag.Bool("json", false, "Print reports as JSON")
	workers := flag.Int("workers", cfg.ScanWorkers, "Files scanned concurrently")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: sectioncount [flags] path...\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logging.New(cfg.LogLevel, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := vault.Options{
		Ranks:   section.Ranks{false, *h1, *h2, *h3},
		Outline: *showOutline,
		Workers: *workers,
	}
	reports, err := vault.Scan(ctx, flag.Args(), opts)
	if err != nil {
		if errors.Is(err, vault.ErrNoFiles) {
			log.Warn("nothing to scan", "paths", flag.Args())
			os.Exit(1)
		}
		log.Error("scan failed", "error", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			log.Error("failed to write reports", "error", err)
			os.Exit(1)
		}
		return
	}

	m := render.Metrics{Words: *words, Chars: *chars, Pages: *pages, ReadingTime: *readingTime}
	if err := vault.Write(os.Stdout, reports, render.Default(), m); err != nil {
		log.Error("failed to write reports", "error", err)
		os.Exit(1)
	}
}
