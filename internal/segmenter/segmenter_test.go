package segmenter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
	"github.com/chaptersplit/chaptersplit/internal/media"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCutter records cuts and optionally fails from a given cut onward.
type fakeCutter struct {
	cuts    []Segment
	failAt  int // 1-based cut index to fail at, 0 disables
	written []string
}

func (c *fakeCutter) CutSegment(ctx context.Context, inputPath string, start, end float64, outPath string, tags media.SegmentTags, coverPath string) error {
	if c.failAt > 0 && len(c.cuts)+1 >= c.failAt {
		return errors.New("disk full")
	}
	c.cuts = append(c.cuts, Segment{Start: start, End: end, Filename: filepath.Base(outPath), Tags: tags})
	if err := os.WriteFile(outPath, []byte("audio"), 0o644); err != nil {
		return err
	}
	c.written = append(c.written, outPath)
	return nil
}

type noCover struct{}

func (noCover) ExtractCover(ctx context.Context, inputPath, coverPath string) error {
	return errors.New("no cover")
}

func testAsset(duration float64) *domain.AudioAsset {
	return &domain.AudioAsset{
		Path:     "/library/book.mp3",
		RelPath:  "book.mp3",
		Duration: duration,
		Tags:     domain.AssetTags{Album: "The Book", Artist: "The Author"},
	}
}

func TestPlanBasic(t *testing.T) {
	s := New(&fakeCutter{}, noCover{}, testLogger(), false)
	asset := testAsset(3600)
	marks := []domain.ChapterMark{
		{Ordinal: 1, StartTime: 0},
		{Ordinal: 2, StartTime: 1200},
		{Ordinal: 3, StartTime: 2400},
	}

	segments := s.Plan(asset, marks)
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}

	// The first segment always starts at zero, later ones half a second early.
	if segments[0].Start != 0 {
		t.Errorf("first start = %v, want 0", segments[0].Start)
	}
	if segments[1].Start != 1199.5 {
		t.Errorf("second start = %v, want 1199.5 (lead-in)", segments[1].Start)
	}

	// Each segment ends where the next mark begins; the last at file end.
	if segments[0].End != 1200 || segments[1].End != 2400 || segments[2].End != 3600 {
		t.Errorf("ends = %v, %v, %v", segments[0].End, segments[1].End, segments[2].End)
	}

	if segments[0].Filename != "001.mp3" || segments[2].Filename != "003.mp3" {
		t.Errorf("filenames = %q, %q", segments[0].Filename, segments[2].Filename)
	}

	// Untitled chapters get a generated tag title and their ordinal as track.
	if segments[0].Tags.Title != "Chapter 001" {
		t.Errorf("tag title = %q, want %q", segments[0].Tags.Title, "Chapter 001")
	}
	if segments[1].Tags.Track != 2 {
		t.Errorf("track = %d, want 2", segments[1].Tags.Track)
	}
	if segments[0].Tags.Album != "The Book" || segments[0].Tags.Artist != "The Author" {
		t.Errorf("album/artist tags not carried: %+v", segments[0].Tags)
	}
}

func TestPlanGapNumbering(t *testing.T) {
	s := New(&fakeCutter{}, noCover{}, testLogger(), false)
	asset := testAsset(3600)

	// Chapter 3 is never announced: the segment covering 2..3 carries the range.
	marks := []domain.ChapterMark{
		{Ordinal: 1, StartTime: 0},
		{Ordinal: 2, StartTime: 1000},
		{Ordinal: 4, StartTime: 2500},
	}

	segments := s.Plan(asset, marks)
	if segments[1].Filename != "002-003.mp3" {
		t.Errorf("gap filename = %q, want 002-003.mp3", segments[1].Filename)
	}
	if segments[2].Filename != "004.mp3" {
		t.Errorf("filename = %q, want 004.mp3", segments[2].Filename)
	}
	if segments[1].Tags.Title != "Chapter 002-003" {
		t.Errorf("gap tag title = %q, want Chapter 002-003", segments[1].Tags.Title)
	}
}

func TestPlanTitledFilenames(t *testing.T) {
	s := New(&fakeCutter{}, noCover{}, testLogger(), true)
	asset := testAsset(3600)
	marks := []domain.ChapterMark{
		{Ordinal: 1, Title: "The Boy Who Lived", StartTime: 0},
		{Ordinal: 2, Title: "", StartTime: 1800},
	}

	segments := s.Plan(asset, marks)
	if segments[0].Filename != "001.The.Boy.Who.Lived.mp3" {
		t.Errorf("filename = %q", segments[0].Filename)
	}
	// An empty title falls back to the bare number.
	if segments[1].Filename != "002.mp3" {
		t.Errorf("filename = %q", segments[1].Filename)
	}
}

func TestPlanLeadInClampsAtZero(t *testing.T) {
	s := New(&fakeCutter{}, noCover{}, testLogger(), false)
	asset := testAsset(3600)
	marks := []domain.ChapterMark{
		{Ordinal: 1, StartTime: 0},
		{Ordinal: 2, StartTime: 0.2},
	}

	segments := s.Plan(asset, marks)
	if segments[1].Start != 0 {
		t.Errorf("start = %v, want clamped to 0", segments[1].Start)
	}
}

func TestPlanEmpty(t *testing.T) {
	s := New(&fakeCutter{}, noCover{}, testLogger(), false)
	if segments := s.Plan(testAsset(3600), nil); segments != nil {
		t.Errorf("got %v, want nil", segments)
	}
}

func TestSplitWritesAllSegments(t *testing.T) {
	cutter := &fakeCutter{}
	s := New(cutter, noCover{}, testLogger(), false)
	asset := testAsset(3600)
	marks := []domain.ChapterMark{
		{Ordinal: 1, StartTime: 0},
		{Ordinal: 2, StartTime: 1800},
	}

	outDir := filepath.Join(t.TempDir(), "out", "book")
	if err := s.Split(context.Background(), asset, marks, outDir); err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(cutter.cuts) != 2 {
		t.Fatalf("made %d cuts, want 2", len(cutter.cuts))
	}
	for _, p := range cutter.written {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("output %s missing: %v", p, err)
		}
	}
}

func TestSplitAbortsOnFailureKeepsWritten(t *testing.T) {
	cutter := &fakeCutter{failAt: 2}
	s := New(cutter, noCover{}, testLogger(), false)
	asset := testAsset(3600)
	marks := []domain.ChapterMark{
		{Ordinal: 1, StartTime: 0},
		{Ordinal: 2, StartTime: 1200},
		{Ordinal: 3, StartTime: 2400},
	}

	outDir := t.TempDir()
	err := s.Split(context.Background(), asset, marks, outDir)
	if !errors.Is(err, errors.ErrSegmentWrite) {
		t.Fatalf("err = %v, want a segment write error", err)
	}

	// The first chapter was written before the failure and stays on disk.
	if len(cutter.written) != 1 {
		t.Fatalf("wrote %d segments before aborting, want 1", len(cutter.written))
	}
	if _, statErr := os.Stat(cutter.written[0]); statErr != nil {
		t.Errorf("already-written segment was removed: %v", statErr)
	}
}

func TestSplitCoverFailureIsNotFatal(t *testing.T) {
	cutter := &fakeCutter{}
	s := New(cutter, noCover{}, testLogger(), false)
	asset := testAsset(3600)
	asset.HasCover = true
	marks := []domain.ChapterMark{{Ordinal: 1, StartTime: 0}}

	if err := s.Split(context.Background(), asset, marks, t.TempDir()); err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(cutter.cuts) != 1 {
		t.Errorf("made %d cuts, want 1", len(cutter.cuts))
	}
}
