package source

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
)

// cacheEntry is the persisted form of one chapter mark. The title key is
// written only when title extraction was enabled for the run that produced
// the cache; its presence is how a reload detects a format mismatch.
type cacheEntry struct {
	Ordinal   int     `json:"ordinal"`
	Title     *string `json:"title,omitzero"`
	StartTime float64 `json:"start_time"`
}

// JSONCache loads and persists the structured chapter cache sidecar.
type JSONCache struct {
	extractTitle bool
	logger       *slog.Logger
}

// NewJSONCache creates the JSON cache probe.
func NewJSONCache(extractTitle bool, logger *slog.Logger) *JSONCache {
	return &JSONCache{extractTitle: extractTitle, logger: logger}
}

// Name implements Resolver.
func (c *JSONCache) Name() domain.Source { return domain.SourceJSONCache }

// Resolve implements Resolver. A cache that fails to parse, violates the
// ordering invariants, or was written under the opposite title setting is
// reported as invalid so the chain falls through.
func (c *JSONCache) Resolve(ctx context.Context, asset *domain.AudioAsset) ([]domain.ChapterMark, error) {
	path := JSONCachePath(asset.Path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoChapters
		}
		return nil, errors.Wrap(err, errors.CodeCacheInvalid, "read chapter cache")
	}

	var entries []cacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheInvalid, "parse chapter cache")
	}
	if len(entries) == 0 {
		return nil, ErrNoChapters
	}

	cacheHasTitles := entries[0].Title != nil
	if cacheHasTitles != c.extractTitle {
		return nil, errors.CacheInvalidf("cache title format (titles=%t) does not match configuration (titles=%t)",
			cacheHasTitles, c.extractTitle)
	}

	marks := make([]domain.ChapterMark, 0, len(entries))
	for _, e := range entries {
		m := domain.ChapterMark{Ordinal: e.Ordinal, StartTime: e.StartTime}
		if e.Title != nil {
			m.Title = *e.Title
		}
		marks = append(marks, m)
	}

	if err := domain.ValidateMarks(marks); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheInvalid, "chapter cache violates ordering")
	}

	c.logger.Info("loaded chapter cache",
		"file", filepath.Base(asset.Path),
		"chapters", len(marks),
	)
	return marks, nil
}

// Persist writes marks as the JSON cache sidecar for the input. Persisting
// happens before segmentation begins so a crash mid-segmentation never forces
// re-transcription on retry.
func (c *JSONCache) Persist(inputPath string, marks []domain.ChapterMark) error {
	entries := make([]cacheEntry, 0, len(marks))
	for _, m := range marks {
		e := cacheEntry{Ordinal: m.Ordinal, StartTime: m.StartTime}
		if c.extractTitle {
			title := m.Title
			e.Title = &title
		}
		entries = append(entries, e)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "marshal chapter cache")
	}
	if err := os.WriteFile(JSONCachePath(inputPath), data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "write chapter cache")
	}
	return nil
}
