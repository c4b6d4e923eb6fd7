package source

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/simonhull/audiometa"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/media"
)

// Embedded reads the container's native chapter table. The native reader
// handles M4B/M4A and MP3; anything it rejects falls back to the chapter
// table ffprobe reported when the asset was probed.
type Embedded struct {
	probed []media.ProbedChapter
	logger *slog.Logger
}

// NewEmbedded creates the embedded-chapter probe. probed is the chapter table
// from the asset's ffprobe pass, used as fallback.
func NewEmbedded(probed []media.ProbedChapter, logger *slog.Logger) *Embedded {
	return &Embedded{probed: probed, logger: logger}
}

// Name implements Resolver.
func (e *Embedded) Name() domain.Source { return domain.SourceEmbedded }

// Resolve implements Resolver. Ordinals come from table position, start times
// and titles from the table values.
func (e *Embedded) Resolve(ctx context.Context, asset *domain.AudioAsset) ([]domain.ChapterMark, error) {
	marks := e.native(ctx, asset.Path)
	if len(marks) == 0 {
		marks = e.fallback()
	}
	if len(marks) == 0 {
		return nil, ErrNoChapters
	}

	normalized, err := domain.NormalizeMarks(marks)
	if err != nil {
		// A broken table is treated as absent, not fatal.
		e.logger.Warn("embedded chapter table violates ordering, ignoring",
			"file", filepath.Base(asset.Path),
			"error", err,
		)
		return nil, ErrNoChapters
	}
	return normalized, nil
}

// native reads the chapter table with the audiometa parser. Returns nil when
// the format is unsupported or unreadable, so the caller can fall back.
func (e *Embedded) native(ctx context.Context, path string) []domain.ChapterMark {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		e.logger.Debug("native metadata reader rejected file, falling back to ffprobe",
			"file", filepath.Base(path),
			"error", err,
		)
		return nil
	}
	defer file.Close()

	marks := make([]domain.ChapterMark, 0, len(file.Chapters))
	for i, ch := range file.Chapters {
		marks = append(marks, domain.ChapterMark{
			Ordinal:   i + 1,
			Title:     ch.Title,
			StartTime: ch.StartTime.Seconds(),
		})
	}
	return marks
}

func (e *Embedded) fallback() []domain.ChapterMark {
	marks := make([]domain.ChapterMark, 0, len(e.probed))
	for i, ch := range e.probed {
		marks = append(marks, domain.ChapterMark{
			Ordinal:   i + 1,
			Title:     ch.Title,
			StartTime: ch.StartTime,
		})
	}
	return marks
}
