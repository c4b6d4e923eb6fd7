package source

import (
	"context"
	"log/slog"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/parser"
	"github.com/chaptersplit/chaptersplit/internal/srt"
	"github.com/chaptersplit/chaptersplit/internal/timeline"
	"github.com/chaptersplit/chaptersplit/internal/transcribe"
)

// ColdPath is the last probe: transcribe the recording, detect chapters in
// the transcript, and persist both caches so no future run pays this cost
// again. Transcription failures are fatal for the file.
type ColdPath struct {
	coordinator *transcribe.Coordinator
	parser      *parser.Parser
	jsonCache   *JSONCache
	logger      *slog.Logger
}

// NewColdPath creates the transcription probe.
func NewColdPath(coord *transcribe.Coordinator, p *parser.Parser, jsonCache *JSONCache, logger *slog.Logger) *ColdPath {
	return &ColdPath{coordinator: coord, parser: p, jsonCache: jsonCache, logger: logger}
}

// Name implements Resolver.
func (c *ColdPath) Name() domain.Source { return domain.SourceTranscription }

// Resolve implements Resolver. The subtitle cache is written as soon as the
// transcript exists, before parsing, so even a zero-chapter outcome leaves a
// re-parseable artifact behind.
func (c *ColdPath) Resolve(ctx context.Context, asset *domain.AudioAsset) ([]domain.ChapterMark, error) {
	tokens, err := c.coordinator.Transcribe(ctx, asset)
	if err != nil {
		return nil, err
	}

	if err := srt.WriteFile(SRTCachePath(asset.Path), tokens); err != nil {
		// The transcript still exists in memory; losing the cache is not fatal.
		c.logger.Warn("failed to persist subtitle cache", "error", err)
	}

	detections := timeline.DetectAll(c.parser, tokens)
	marks := timeline.Resolve(c.logger, tokens, detections)
	if len(marks) == 0 {
		return nil, ErrNoChapters
	}

	if err := c.jsonCache.Persist(asset.Path, marks); err != nil {
		c.logger.Warn("failed to persist chapter cache", "error", err)
	}
	return marks, nil
}
