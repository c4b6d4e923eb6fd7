// Package pipeline orchestrates the per-file flow: probe the container,
// resolve chapter boundaries through the source chain, cut the segments, and
// archive the consumed input.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chaptersplit/chaptersplit/internal/config"
	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/media"
	"github.com/chaptersplit/chaptersplit/internal/scanner"
	"github.com/chaptersplit/chaptersplit/internal/segmenter"
	"github.com/chaptersplit/chaptersplit/internal/source"
	"github.com/chaptersplit/chaptersplit/internal/watcher"
)

// Ledger records run outcomes. Nil disables recording.
type Ledger interface {
	Begin(ctx context.Context, path, relPath string) (string, error)
	Complete(ctx context.Context, runID string, src domain.Source, chapterCount int) error
	Fail(ctx context.Context, runID string, runErr error) error
}

// Prober extracts container facts from one file. Implemented by ffprobe in
// production and by fakes in tests.
type Prober interface {
	Probe(ctx context.Context, path string) (*media.ProbeResult, error)
}

// FFprobe implements Prober with an ffprobe subprocess.
type FFprobe struct{}

// Probe implements Prober.
func (FFprobe) Probe(ctx context.Context, path string) (*media.ProbeResult, error) {
	return media.Probe(ctx, path)
}

// Pipeline processes recordings end to end.
//
// Key design principles:
//   - One file is one unit of work; a failure never stops the batch
//   - Per-path locking deduplicates concurrent events for the same file
//   - The embedded-chapter probe is built per file (it needs that file's
//     probe result); the cache and transcription probes are shared
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	prober    Prober
	jsonCache *source.JSONCache
	srtCache  *source.SRTCache
	coldPath  *source.ColdPath
	segmenter *segmenter.Segmenter
	archiver  *segmenter.Archiver
	ledger    Ledger

	// fileLocks provides per-path mutexes so watch events and batch walks
	// never process the same recording twice at once.
	fileLocks *SyncMap[string, *sync.Mutex]
}

// New creates a pipeline.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	prober Prober,
	jsonCache *source.JSONCache,
	srtCache *source.SRTCache,
	coldPath *source.ColdPath,
	seg *segmenter.Segmenter,
	archiver *segmenter.Archiver,
	ledger Ledger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		prober:    prober,
		jsonCache: jsonCache,
		srtCache:  srtCache,
		coldPath:  coldPath,
		segmenter: seg,
		archiver:  archiver,
		ledger:    ledger,
		fileLocks: NewSyncMap[string, *sync.Mutex](),
	}
}

// Process runs one recording through the full pipeline. Errors are fatal for
// this file only; the input stays in place for a retry.
func (p *Pipeline) Process(ctx context.Context, path, relPath string) error {
	lock := p.fileLock(path)
	if !lock.TryLock() {
		p.logger.Debug("file already being processed, skipping", "path", path)
		return nil
	}
	defer lock.Unlock()

	base := filepath.Base(path)
	p.logger.Info("processing", "file", base)

	runID := p.beginRun(ctx, path, relPath)

	probe, err := p.prober.Probe(ctx, path)
	if err != nil {
		p.failRun(ctx, runID, err)
		return err
	}

	asset := assetFromProbe(path, relPath, probe)

	chain := source.NewChain(p.logger,
		source.NewEmbedded(probe.Chapters, p.logger),
		p.jsonCache,
		p.srtCache,
		p.coldPath,
	)

	marks, src, err := chain.Resolve(ctx, asset)
	if err != nil {
		p.failRun(ctx, runID, err)
		return err
	}

	outputDir := p.outputDir(asset)
	if err := p.segmenter.Split(ctx, asset, marks, outputDir); err != nil {
		p.failRun(ctx, runID, err)
		return err
	}

	if err := p.archiver.Archive(asset); err != nil {
		p.failRun(ctx, runID, err)
		return err
	}

	p.completeRun(ctx, runID, src, len(marks))
	p.logger.Info("done", "file", base, "chapters", len(marks), "source", src)
	return nil
}

// RunBatch walks the input directory and processes every discovered recording,
// up to Workers files concurrently. It returns the number of failed files.
func (p *Pipeline) RunBatch(ctx context.Context, walker *scanner.Walker) (int, error) {
	var (
		mu     sync.Mutex
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Split.Workers)

	for result := range walker.Walk(ctx, p.cfg.Paths.InputDir) {
		g.Go(func() error {
			if err := p.Process(gctx, result.Path, result.RelPath); err != nil {
				p.logger.Error("failed to process file",
					"file", filepath.Base(result.Path),
					"error", err,
				)
				mu.Lock()
				failed++
				mu.Unlock()
			}
			// Per-file isolation: never cancel the group.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failed, err
	}
	return failed, ctx.Err()
}

// RunWatch consumes settled watcher events until the context ends.
func (p *Pipeline) RunWatch(ctx context.Context, w *watcher.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			relPath, err := filepath.Rel(p.cfg.Paths.InputDir, ev.Path)
			if err != nil {
				relPath = filepath.Base(ev.Path)
			}
			if err := p.Process(ctx, ev.Path, relPath); err != nil {
				p.logger.Error("failed to process file",
					"file", filepath.Base(ev.Path),
					"error", err,
				)
			}
		}
	}
}

// outputDir maps an input to its per-book output directory: the input-relative
// parent plus the recording's stem.
func (p *Pipeline) outputDir(asset *domain.AudioAsset) string {
	stem := strings.TrimSuffix(filepath.Base(asset.Path), filepath.Ext(asset.Path))
	return filepath.Join(p.cfg.Paths.OutputDir, filepath.Dir(asset.RelPath), stem)
}

func (p *Pipeline) fileLock(path string) *sync.Mutex {
	lock, _ := p.fileLocks.LoadOrStore(path, &sync.Mutex{})
	return lock
}

func (p *Pipeline) beginRun(ctx context.Context, path, relPath string) string {
	if p.ledger == nil {
		return ""
	}
	runID, err := p.ledger.Begin(ctx, path, relPath)
	if err != nil {
		p.logger.Warn("failed to record run start", "error", err)
		return ""
	}
	return runID
}

func (p *Pipeline) completeRun(ctx context.Context, runID string, src domain.Source, chapters int) {
	if p.ledger == nil || runID == "" {
		return
	}
	if err := p.ledger.Complete(ctx, runID, src, chapters); err != nil {
		p.logger.Warn("failed to record run completion", "error", err)
	}
}

func (p *Pipeline) failRun(ctx context.Context, runID string, runErr error) {
	if p.ledger == nil || runID == "" {
		return
	}
	if err := p.ledger.Fail(ctx, runID, runErr); err != nil {
		p.logger.Warn("failed to record run failure", "error", err)
	}
}

// assetFromProbe builds the pipeline's view of a recording from its probe.
func assetFromProbe(path, relPath string, probe *media.ProbeResult) *domain.AudioAsset {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	tags := domain.AssetTags{
		Title:  probe.Tags["title"],
		Album:  probe.Tags["album"],
		Artist: probe.Tags["artist"],
	}
	if tags.Album == "" {
		tags.Album = tags.Title
	}
	if tags.Album == "" {
		tags.Album = stem
	}

	return &domain.AudioAsset{
		Path:     path,
		RelPath:  relPath,
		Duration: probe.Duration,
		Format:   probe.Format,
		Tags:     tags,
		HasCover: probe.HasCover,
	}
}
