package timeline

import (
	"io"
	"log/slog"
	"testing"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tok(text string, start float64) domain.TranscriptToken {
	return domain.TranscriptToken{Text: text, Start: start, End: start + 1}
}

func TestDetectAll(t *testing.T) {
	p := parser.New(false)
	tokens := []domain.TranscriptToken{
		tok("it was a dark and stormy night", 0),
		tok("Chapter One", 12.5),
		tok("the rain fell in torrents", 14),
		tok("Chapter 2", 600),
	}

	detections := DetectAll(p, tokens)
	if len(detections) != 2 {
		t.Fatalf("got %d detections, want 2", len(detections))
	}
	if detections[0].TokenIndex != 1 || detections[0].Ordinal != 1 {
		t.Errorf("first detection = ordinal %d at token %d, want 1 at 1",
			detections[0].Ordinal, detections[0].TokenIndex)
	}
	if detections[1].TokenIndex != 3 || detections[1].Ordinal != 2 {
		t.Errorf("second detection = ordinal %d at token %d, want 2 at 3",
			detections[1].Ordinal, detections[1].TokenIndex)
	}
}

func TestResolveAssignsTokenStart(t *testing.T) {
	tokens := []domain.TranscriptToken{
		tok("Chapter One", 10),
		tok("Chapter Two", 700),
	}
	detections := []Detection{
		{Detection: parser.Detection{Ordinal: 1}, TokenIndex: 0},
		{Detection: parser.Detection{Ordinal: 2}, TokenIndex: 1},
	}

	marks := Resolve(testLogger(), tokens, detections)
	if len(marks) != 2 {
		t.Fatalf("got %d marks, want 2", len(marks))
	}
	if marks[0].StartTime != 10 || marks[1].StartTime != 700 {
		t.Errorf("start times = %.1f, %.1f, want 10, 700", marks[0].StartTime, marks[1].StartTime)
	}
}

func TestResolveDropsUnlocatable(t *testing.T) {
	tokens := []domain.TranscriptToken{tok("Chapter One", 10)}
	detections := []Detection{
		{Detection: parser.Detection{Ordinal: 1}, TokenIndex: 0},
		{Detection: parser.Detection{Ordinal: 2}, TokenIndex: 5},
	}

	marks := Resolve(testLogger(), tokens, detections)
	if len(marks) != 1 {
		t.Fatalf("got %d marks, want 1", len(marks))
	}
	if marks[0].Ordinal != 1 {
		t.Errorf("kept ordinal %d, want 1", marks[0].Ordinal)
	}
}

func TestResolveDuplicateOrdinalKeepsEarlier(t *testing.T) {
	tokens := []domain.TranscriptToken{
		tok("Chapter Three", 100),
		tok("chapter three again", 2000),
	}
	detections := []Detection{
		{Detection: parser.Detection{Ordinal: 3}, TokenIndex: 0},
		{Detection: parser.Detection{Ordinal: 3}, TokenIndex: 1},
	}

	marks := Resolve(testLogger(), tokens, detections)
	if len(marks) != 1 {
		t.Fatalf("got %d marks, want 1", len(marks))
	}
	if marks[0].StartTime != 100 {
		t.Errorf("kept start %.1f, want the earlier detection at 100", marks[0].StartTime)
	}
}

func TestResolveDropsNonAdvancingStart(t *testing.T) {
	// Ordinal 5 detected later in the text but earlier in time than ordinal 4:
	// keeping it would make ordinal and time order diverge.
	tokens := []domain.TranscriptToken{
		tok("Chapter Five", 50),
		tok("Chapter Four", 400),
	}
	detections := []Detection{
		{Detection: parser.Detection{Ordinal: 5}, TokenIndex: 0},
		{Detection: parser.Detection{Ordinal: 4}, TokenIndex: 1},
	}

	marks := Resolve(testLogger(), tokens, detections)
	if len(marks) != 1 {
		t.Fatalf("got %d marks, want 1", len(marks))
	}
	if marks[0].Ordinal != 4 {
		t.Errorf("kept ordinal %d, want 4", marks[0].Ordinal)
	}
}

func TestResolveEmpty(t *testing.T) {
	if marks := Resolve(testLogger(), nil, nil); marks != nil {
		t.Errorf("got %v, want nil", marks)
	}
}
