package srt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chaptersplit/chaptersplit/internal/domain"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.042, "00:01:01,042"},
		{3661.25, "01:01:01,250"},
		{-5, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("01:02:03,450")
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	want := 3723.45
	if got != want {
		t.Errorf("ParseTime = %v, want %v", got, want)
	}

	if _, err := ParseTime("not a timestamp"); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func TestWriteRead(t *testing.T) {
	tokens := []domain.TranscriptToken{
		{Text: "it was the best of times", Start: 0, End: 4.25},
		{Text: "Chapter Two", Start: 601.5, End: 603},
	}

	var buf bytes.Buffer
	if err := Write(&buf, tokens); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != len(tokens) {
		t.Fatalf("got %d cues, want %d", len(got), len(tokens))
	}
	for i := range tokens {
		if got[i].Text != tokens[i].Text {
			t.Errorf("cue %d text = %q, want %q", i, got[i].Text, tokens[i].Text)
		}
		if got[i].Start != tokens[i].Start || got[i].End != tokens[i].End {
			t.Errorf("cue %d times = %v..%v, want %v..%v",
				i, got[i].Start, got[i].End, tokens[i].Start, tokens[i].End)
		}
	}
}

func TestReadSkipsMalformedBlocks(t *testing.T) {
	content := strings.Join([]string{
		"1",
		"00:00:00,000 --> 00:00:02,000",
		"a valid cue",
		"",
		"not even a cue",
		"",
		"3",
		"garbage --> 00:00:09,000",
		"broken timestamp",
		"",
		"4",
		"00:00:10,000 --> 00:00:12,000",
		"another valid cue",
		"",
	}, "\n")

	tokens, err := Read(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("got %d cues, want 2", len(tokens))
	}
	if tokens[0].Text != "a valid cue" || tokens[1].Text != "another valid cue" {
		t.Errorf("unexpected cues: %+v", tokens)
	}
}
