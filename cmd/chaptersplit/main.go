// Package main provides the entry point for the chaptersplit CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/chaptersplit/chaptersplit/internal/config"
	"github.com/chaptersplit/chaptersplit/internal/di"
	"github.com/chaptersplit/chaptersplit/internal/logger"
	"github.com/chaptersplit/chaptersplit/internal/media"
	"github.com/chaptersplit/chaptersplit/internal/pipeline"
	"github.com/chaptersplit/chaptersplit/internal/scanner"
	"github.com/chaptersplit/chaptersplit/internal/store"
	"github.com/chaptersplit/chaptersplit/internal/watcher"
)

func main() {
	os.Exit(run())
}

func run() int {
	injector := di.NewContainer()

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	log := do.MustInvoke[*logger.Logger](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ledger.History > 0 {
		return printHistory(ctx, injector, cfg, log)
	}

	if !media.Available() {
		log.Error("ffmpeg and ffprobe are required on the PATH")
		return 1
	}

	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.DoneDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("failed to create directory", "path", dir, "error", err)
			return 1
		}
	}

	pipe := do.MustInvoke[*pipeline.Pipeline](injector)
	walker := do.MustInvoke[*scanner.Walker](injector)

	log.Info("Starting chapter split",
		"input", cfg.Paths.InputDir,
		"output", cfg.Paths.OutputDir,
		"workers", cfg.Split.Workers,
		"watch", cfg.Watch.Enabled,
	)

	failed, err := pipe.RunBatch(ctx, walker)
	if err != nil && ctx.Err() == nil {
		log.Error("batch run failed", "error", err)
		closeLedger(injector, cfg, log)
		return 1
	}
	if failed > 0 {
		log.Warn("batch finished with failures", "failed", failed)
	}

	code := 0
	if cfg.Watch.Enabled && ctx.Err() == nil {
		if err := runWatch(ctx, injector, cfg, log, pipe); err != nil {
			code = 1
		}
	} else if failed > 0 {
		code = 1
	}

	closeLedger(injector, cfg, log)
	return code
}

// runWatch processes the input directory continuously until interrupted.
func runWatch(ctx context.Context, injector do.Injector, cfg *config.Config, log *logger.Logger, pipe *pipeline.Pipeline) error {
	w, err := do.Invoke[*watcher.Watcher](injector)
	if err != nil {
		log.Error("failed to create watcher", "error", err)
		return err
	}
	if err := w.Watch(cfg.Paths.InputDir); err != nil {
		log.Error("failed to watch input directory", "error", err)
		return err
	}

	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("watcher stopped", "error", err)
		}
	}()

	log.Info("Watching for new recordings", "input", cfg.Paths.InputDir)
	err = pipe.RunWatch(ctx, w)

	if stopErr := w.Stop(); stopErr != nil {
		log.Error("failed to stop watcher", "error", stopErr)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// printHistory lists the most recent ledger runs.
func printHistory(ctx context.Context, injector do.Injector, cfg *config.Config, log *logger.Logger) int {
	if cfg.Ledger.Path == "" {
		log.Error("history requires a configured ledger path")
		return 1
	}

	ledger, err := do.Invoke[*store.Store](injector)
	if err != nil {
		log.Error("failed to open ledger", "error", err)
		return 1
	}
	defer ledger.Close()

	runs, err := ledger.Recent(ctx, cfg.Ledger.History)
	if err != nil {
		log.Error("failed to read ledger", "error", err)
		return 1
	}

	for _, r := range runs {
		line := fmt.Sprintf("%s  %-9s  %s", r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.RelPath)
		if r.Status == store.StatusCompleted {
			line += fmt.Sprintf("  (%d chapters via %s)", r.ChapterCount, r.Source)
		} else if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Println(line)
	}
	return 0
}

// closeLedger closes the run ledger if it was ever opened.
func closeLedger(injector do.Injector, cfg *config.Config, log *logger.Logger) {
	if cfg.Ledger.Path == "" {
		return
	}
	if ledger, err := do.Invoke[*store.Store](injector); err == nil {
		if err := ledger.Close(); err != nil {
			log.Error("failed to close ledger", "error", err)
		}
	}
}
