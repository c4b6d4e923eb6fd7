package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
	"github.com/chaptersplit/chaptersplit/internal/parser"
	"github.com/chaptersplit/chaptersplit/internal/srt"
	"github.com/chaptersplit/chaptersplit/internal/timeline"
)

// SRTCache resolves chapters from a previously persisted subtitle sidecar.
// Cues become tokens (one per cue, a deliberate granularity loss against
// word-level timing) and run through the parser and timeline resolver.
type SRTCache struct {
	parser    *parser.Parser
	jsonCache *JSONCache
	logger    *slog.Logger
}

// NewSRTCache creates the SRT cache probe. A successful resolution is
// re-persisted through jsonCache so the next run takes the cheaper path.
func NewSRTCache(p *parser.Parser, jsonCache *JSONCache, logger *slog.Logger) *SRTCache {
	return &SRTCache{parser: p, jsonCache: jsonCache, logger: logger}
}

// Name implements Resolver.
func (s *SRTCache) Name() domain.Source { return domain.SourceSRTCache }

// Resolve implements Resolver.
func (s *SRTCache) Resolve(ctx context.Context, asset *domain.AudioAsset) ([]domain.ChapterMark, error) {
	path := SRTCachePath(asset.Path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoChapters
		}
		return nil, errors.Wrap(err, errors.CodeCacheInvalid, "stat subtitle cache")
	}

	tokens, err := srt.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheInvalid, "parse subtitle cache")
	}
	if len(tokens) == 0 {
		return nil, errors.CacheInvalid("subtitle cache holds no cues")
	}

	s.logger.Info("parsing subtitle cache",
		"file", filepath.Base(path),
		"cues", len(tokens),
	)

	detections := timeline.DetectAll(s.parser, tokens)
	marks := timeline.Resolve(s.logger, tokens, detections)
	if len(marks) == 0 {
		// Nothing detected; the cold path decides what happens next.
		return nil, ErrNoChapters
	}

	if err := s.jsonCache.Persist(asset.Path, marks); err != nil {
		s.logger.Warn("failed to persist chapter cache", "error", err)
	}
	return marks, nil
}
