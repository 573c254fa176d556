// attune-replay seeds session memory from conversation export files. It runs
// the same turn pipeline as the service, offline and without draft
// generation, so users carry their history into their first live session.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/config"
	"github.com/MikeSquared-Agency/attune/internal/replay"
	"github.com/MikeSquared-Agency/attune/internal/store"
)

func main() {
	exportDir := flag.String("export-dir", "~/.attune/exports", "directory of conversation export JSONL files")
	singleFile := flag.String("file", "", "process a single export file only")
	userID := flag.String("user", "", "user id override when exports carry none")
	since := flag.String("since", "", "only replay messages on or after this date (YYYY-MM-DD)")
	until := flag.String("until", "", "only replay messages on or before this date (YYYY-MM-DD)")
	minMessages := flag.Int("min-messages", 4, "skip exports with fewer messages")
	dryRun := flag.Bool("dry-run", false, "replay without writing to the database")
	flag.Parse()

	cfg := config.Load()
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))

	rcfg := replay.Config{
		ExportDir:   *exportDir,
		SingleFile:  *singleFile,
		UserID:      *userID,
		MinMessages: *minMessages,
		DryRun:      *dryRun,
	}
	if *since != "" {
		t, err := time.Parse("2006-01-02", *since)
		if err != nil {
			slog.Error("invalid --since date", "value", *since, "error", err)
			os.Exit(1)
		}
		rcfg.Since = t
	}
	if *until != "" {
		t, err := time.Parse("2006-01-02", *until)
		if err != nil {
			slog.Error("invalid --until date", "value", *until, "error", err)
			os.Exit(1)
		}
		rcfg.Until = t.Add(24*time.Hour - time.Nanosecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("interrupt received, finishing current file")
		cancel()
	}()

	var db *store.Store
	if !rcfg.DryRun {
		if cfg.DatabaseURL == "" {
			slog.Error("DATABASE_URL is required unless --dry-run is set")
			os.Exit(1)
		}
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	runner := replay.NewRunner(rcfg, db, slog.Default())
	if err := runner.Run(ctx); err != nil && err != context.Canceled {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
}
