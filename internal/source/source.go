// Package source resolves a file's chapter list from the cheapest trustworthy
// source: embedded container chapters, a JSON cache, an SRT cache, and
// finally fresh transcription, tried in that order.
package source

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
)

// ErrNoChapters reports that a source has nothing to offer for this file.
// It is the chain's signal to try the next source, never a failure.
var ErrNoChapters = errors.New("source yielded no chapters")

// Resolver is one probe in the priority chain.
type Resolver interface {
	// Name identifies the probe in logs and the run ledger.
	Name() domain.Source

	// Resolve returns the chapter list this source holds for the asset.
	// ErrNoChapters means the source cannot serve this file; a CacheInvalid
	// error means its data exists but is unusable (both fall through to the
	// next probe). Any other error is fatal for the file.
	Resolve(ctx context.Context, asset *domain.AudioAsset) ([]domain.ChapterMark, error)
}

// Chain tries resolvers in fixed priority order and short-circuits on the
// first non-empty chapter list. The order is a hard contract: a file is never
// re-transcribed when a higher-priority source already yielded chapters.
type Chain struct {
	resolvers []Resolver
	logger    *slog.Logger
}

// NewChain builds a chain over resolvers in priority order.
func NewChain(logger *slog.Logger, resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers, logger: logger}
}

// Resolve walks the chain. An exhausted chain is not an error: the file is
// treated as a single untitled chapter spanning its full duration.
func (c *Chain) Resolve(ctx context.Context, asset *domain.AudioAsset) ([]domain.ChapterMark, domain.Source, error) {
	base := filepath.Base(asset.Path)

	for _, r := range c.resolvers {
		marks, err := r.Resolve(ctx, asset)
		switch {
		case err == nil:
			c.logger.Info("chapters resolved",
				"file", base,
				"source", r.Name(),
				"chapters", len(marks),
			)
			return domain.Tag(marks, r.Name()), r.Name(), nil
		case errors.Is(err, ErrNoChapters):
			c.logger.Debug("source has no chapters", "file", base, "source", r.Name())
		case errors.Is(err, errors.ErrCacheInvalid):
			c.logger.Warn("cache invalid, treating as absent",
				"file", base,
				"source", r.Name(),
				"error", err,
			)
		default:
			return nil, r.Name(), err
		}
	}

	// Valid terminal state: the recording is one untitled chapter.
	c.logger.Info("no chapters found, treating file as a single chapter", "file", base)
	single := []domain.ChapterMark{{Ordinal: 1, StartTime: 0, Source: domain.SourceTranscription}}
	return single, domain.SourceTranscription, nil
}

// JSONCachePath returns the chapter cache sidecar location for an input file.
func JSONCachePath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".chapters.json"
}

// SRTCachePath returns the subtitle cache sidecar location for an input file.
func SRTCachePath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".srt"
}
