// Package segmenter cuts a recording at resolved chapter boundaries, writes
// tagged per-chapter files, and archives consumed inputs.
package segmenter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
	"github.com/chaptersplit/chaptersplit/internal/media"
	"github.com/chaptersplit/chaptersplit/internal/util"
)

// leadInSeconds is trimmed off every cut start except the first, so a chapter
// announcement clipped mid-word by an imprecise boundary stays intact.
const leadInSeconds = 0.5

// Cutter writes one audio segment. Implemented by ffmpeg in production and by
// fakes in tests.
type Cutter interface {
	CutSegment(ctx context.Context, inputPath string, start, end float64, outPath string, tags media.SegmentTags, coverPath string) error
}

// CoverExtractor pulls embedded cover art out into a standalone file.
type CoverExtractor interface {
	ExtractCover(ctx context.Context, inputPath, coverPath string) error
}

// FFmpeg implements Cutter and CoverExtractor with ffmpeg subprocesses.
type FFmpeg struct{}

// CutSegment implements Cutter.
func (FFmpeg) CutSegment(ctx context.Context, inputPath string, start, end float64, outPath string, tags media.SegmentTags, coverPath string) error {
	return media.CutSegment(ctx, inputPath, start, end, outPath, tags, coverPath)
}

// ExtractCover implements CoverExtractor.
func (FFmpeg) ExtractCover(ctx context.Context, inputPath, coverPath string) error {
	return media.ExtractCover(ctx, inputPath, coverPath)
}

// Segment is one planned cut.
type Segment struct {
	Start    float64
	End      float64
	Filename string
	Tags     media.SegmentTags
}

// Segmenter plans and executes chapter cuts.
type Segmenter struct {
	cutter       Cutter
	covers       CoverExtractor
	logger       *slog.Logger
	extractTitle bool
}

// New creates a segmenter.
func New(cutter Cutter, covers CoverExtractor, logger *slog.Logger, extractTitle bool) *Segmenter {
	return &Segmenter{cutter: cutter, covers: covers, logger: logger, extractTitle: extractTitle}
}

// Plan maps an ordered mark list onto concrete cuts. The first cut always
// starts at zero; later cuts start half a second early as a lead-in. When the
// following ordinal skips ahead the filename carries the covered range
// ("002-003"), so a recording that never announces chapter 3 still accounts
// for it.
func (s *Segmenter) Plan(asset *domain.AudioAsset, marks []domain.ChapterMark) []Segment {
	if len(marks) == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(marks))
	for i, mark := range marks {
		var start float64
		if i > 0 {
			start = mark.StartTime - leadInSeconds
			if start < 0 {
				start = 0
			}
		}

		end := asset.Duration
		if i+1 < len(marks) {
			end = marks[i+1].StartTime
		}

		numberStr := fmt.Sprintf("%03d", mark.Ordinal)
		if i+1 < len(marks) && marks[i+1].Ordinal > mark.Ordinal+1 {
			numberStr = fmt.Sprintf("%03d-%03d", mark.Ordinal, marks[i+1].Ordinal-1)
		}

		filename := numberStr + ".mp3"
		if s.extractTitle {
			if title := util.SanitizeFilename(mark.Title); title != "" {
				filename = numberStr + "." + title + ".mp3"
			}
		}

		tagTitle := mark.Title
		if tagTitle == "" {
			tagTitle = "Chapter " + numberStr
		}

		segments = append(segments, Segment{
			Start:    start,
			End:      end,
			Filename: filename,
			Tags: media.SegmentTags{
				Title:  tagTitle,
				Album:  asset.Tags.Album,
				Artist: asset.Tags.Artist,
				Track:  mark.Ordinal,
			},
		})
	}
	return segments
}

// Split cuts every planned segment into outputDir. Cover art, when present,
// is extracted once and copied into each output. The first failed cut aborts
// the rest; chapters already written stay on disk (at-least-once, not
// atomic).
func (s *Segmenter) Split(ctx context.Context, asset *domain.AudioAsset, marks []domain.ChapterMark, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeSegmentWrite, "create output directory")
	}

	coverPath := ""
	if asset.HasCover {
		scratch, err := os.MkdirTemp("", "chaptersplit-cover-")
		if err != nil {
			return errors.Wrap(err, errors.CodeSegmentWrite, "create cover scratch directory")
		}
		defer os.RemoveAll(scratch)

		coverPath = filepath.Join(scratch, "cover.jpg")
		if err := s.covers.ExtractCover(ctx, asset.Path, coverPath); err != nil {
			// A missing cover degrades the output, it does not block it.
			s.logger.Warn("cover extraction failed, continuing without cover",
				"file", filepath.Base(asset.Path),
				"error", err,
			)
			coverPath = ""
		}
	}

	segments := s.Plan(asset, marks)
	for i, seg := range segments {
		outPath := filepath.Join(outputDir, seg.Filename)
		s.logger.Info("exporting chapter",
			"file", seg.Filename,
			"start", seg.Start,
			"end", seg.End,
		)

		if err := s.cutter.CutSegment(ctx, asset.Path, seg.Start, seg.End, outPath, seg.Tags, coverPath); err != nil {
			return errors.Wrapf(err, errors.CodeSegmentWrite, "cut chapter %d/%d (%s)", i+1, len(segments), seg.Filename)
		}
	}

	return nil
}
