package source

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubResolver is a scripted chain probe that counts its invocations.
type stubResolver struct {
	name  domain.Source
	marks []domain.ChapterMark
	err   error
	calls int
}

func (s *stubResolver) Name() domain.Source { return s.name }

func (s *stubResolver) Resolve(ctx context.Context, asset *domain.AudioAsset) ([]domain.ChapterMark, error) {
	s.calls++
	return s.marks, s.err
}

func testAsset() *domain.AudioAsset {
	return &domain.AudioAsset{Path: "/library/book.mp3", RelPath: "book.mp3", Duration: 3600}
}

func TestChainFirstSourceWins(t *testing.T) {
	first := &stubResolver{
		name:  domain.SourceEmbedded,
		marks: []domain.ChapterMark{{Ordinal: 1, StartTime: 0}, {Ordinal: 2, StartTime: 600}},
	}
	second := &stubResolver{name: domain.SourceJSONCache}

	marks, src, err := NewChain(testLogger(), first, second).Resolve(context.Background(), testAsset())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src != domain.SourceEmbedded {
		t.Errorf("source = %q, want %q", src, domain.SourceEmbedded)
	}
	if len(marks) != 2 {
		t.Fatalf("got %d marks, want 2", len(marks))
	}
	for _, m := range marks {
		if m.Source != domain.SourceEmbedded {
			t.Errorf("mark %d source = %q, want %q", m.Ordinal, m.Source, domain.SourceEmbedded)
		}
	}
	if second.calls != 0 {
		t.Errorf("lower-priority source was consulted %d times, want 0", second.calls)
	}
}

func TestChainFallsThroughNoChapters(t *testing.T) {
	first := &stubResolver{name: domain.SourceEmbedded, err: ErrNoChapters}
	second := &stubResolver{
		name:  domain.SourceJSONCache,
		marks: []domain.ChapterMark{{Ordinal: 1, StartTime: 0}},
	}

	marks, src, err := NewChain(testLogger(), first, second).Resolve(context.Background(), testAsset())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src != domain.SourceJSONCache {
		t.Errorf("source = %q, want %q", src, domain.SourceJSONCache)
	}
	if len(marks) != 1 {
		t.Errorf("got %d marks, want 1", len(marks))
	}
}

func TestChainFallsThroughInvalidCache(t *testing.T) {
	first := &stubResolver{name: domain.SourceJSONCache, err: errors.CacheInvalid("corrupt")}
	second := &stubResolver{
		name:  domain.SourceSRTCache,
		marks: []domain.ChapterMark{{Ordinal: 1, StartTime: 0}},
	}

	_, src, err := NewChain(testLogger(), first, second).Resolve(context.Background(), testAsset())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src != domain.SourceSRTCache {
		t.Errorf("source = %q, want %q", src, domain.SourceSRTCache)
	}
}

func TestChainFatalErrorStops(t *testing.T) {
	first := &stubResolver{name: domain.SourceTranscription, err: errors.Transcription("model blew up")}
	second := &stubResolver{name: domain.SourceJSONCache}

	_, _, err := NewChain(testLogger(), first, second).Resolve(context.Background(), testAsset())
	if !errors.Is(err, errors.ErrTranscription) {
		t.Fatalf("err = %v, want a transcription error", err)
	}
	if second.calls != 0 {
		t.Errorf("chain continued past a fatal error")
	}
}

func TestChainExhaustedSynthesizesSingleChapter(t *testing.T) {
	only := &stubResolver{name: domain.SourceTranscription, err: ErrNoChapters}

	marks, src, err := NewChain(testLogger(), only).Resolve(context.Background(), testAsset())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(marks) != 1 {
		t.Fatalf("got %d marks, want 1", len(marks))
	}
	m := marks[0]
	if m.Ordinal != 1 || m.StartTime != 0 || m.Title != "" {
		t.Errorf("synthesized mark = %+v, want untitled ordinal 1 at 0s", m)
	}
	if src != domain.SourceTranscription {
		t.Errorf("source = %q, want %q", src, domain.SourceTranscription)
	}
}

func TestCachePaths(t *testing.T) {
	if got := JSONCachePath("/in/book.m4b"); got != "/in/book.chapters.json" {
		t.Errorf("JSONCachePath = %q", got)
	}
	if got := SRTCachePath("/in/book.m4b"); got != "/in/book.srt" {
		t.Errorf("SRTCachePath = %q", got)
	}
}
