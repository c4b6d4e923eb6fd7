package parser

import "testing"

func TestDetectOrdinalForms(t *testing.T) {
	p := New(false)

	tests := []struct {
		name   string
		window string
		want   int
	}{
		{"arabic", "Chapter 7", 7},
		{"arabic with punctuation", "Chapter 7: The Escape", 7},
		{"roman", "Chapter IV", 4},
		{"roman lowercase", "chapter xii begins now", 12},
		{"word", "Chapter One", 1},
		{"multi word", "Chapter twenty one begins", 21},
		{"hundred with and", "Chapter one hundred and twelve ends", 112},
		{"keyword mid window", "and so began chapter three of the tale", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, ok := p.Detect(tt.window, "")
			if !ok {
				t.Fatalf("Detect(%q) found nothing", tt.window)
			}
			if det.Ordinal != tt.want {
				t.Errorf("Detect(%q) ordinal = %d, want %d", tt.window, det.Ordinal, tt.want)
			}
		})
	}
}

func TestDetectNoMatch(t *testing.T) {
	p := New(false)

	windows := []string{
		"",
		"nothing to see here",
		"chapter",                    // keyword with nothing after it
		"the chapter was long",       // keyword with a non-ordinal
		"chapter and verse",          // number-word run that never parses
		"chaptering is not a marker", // keyword must match the whole word
	}

	for _, w := range windows {
		if det, ok := p.Detect(w, ""); ok {
			t.Errorf("Detect(%q) = %+v, want no match", w, det)
		}
	}
}

func TestDetectMalformedOrdinalKeepsScanning(t *testing.T) {
	p := New(false)

	det, ok := p.Detect("in this chapter nothing happens until chapter 9 arrives", "")
	if !ok {
		t.Fatal("expected a detection")
	}
	if det.Ordinal != 9 {
		t.Errorf("ordinal = %d, want 9", det.Ordinal)
	}
}

func TestDetectTitle(t *testing.T) {
	p := New(true)

	det, ok := p.Detect("Chapter 3: The Return of Mr. Smith. It was raining.", "")
	if !ok {
		t.Fatal("expected a detection")
	}
	if det.Ordinal != 3 {
		t.Errorf("ordinal = %d, want 3", det.Ordinal)
	}
	if det.Title != "The Return of Mr. Smith" {
		t.Errorf("title = %q, want %q", det.Title, "The Return of Mr. Smith")
	}
}

func TestDetectTitleFromContinuation(t *testing.T) {
	p := New(true)

	// The marker ends exactly at the window boundary; the title lives in the
	// next cue.
	det, ok := p.Detect("Chapter Two", "The Vanishing Glass. Nearly ten years had passed.")
	if !ok {
		t.Fatal("expected a detection")
	}
	if det.Title != "The Vanishing Glass" {
		t.Errorf("title = %q, want %q", det.Title, "The Vanishing Glass")
	}
}

func TestDetectTitleDisabled(t *testing.T) {
	p := New(false)

	det, ok := p.Detect("Chapter 5 The Hidden Door. More text.", "")
	if !ok {
		t.Fatal("expected a detection")
	}
	if det.Title != "" {
		t.Errorf("title = %q, want empty with extraction disabled", det.Title)
	}
}

func TestDetectSpan(t *testing.T) {
	p := New(false)

	det, ok := p.Detect("so chapter twenty one began", "")
	if !ok {
		t.Fatal("expected a detection")
	}
	if det.KeywordIndex != 1 {
		t.Errorf("keyword index = %d, want 1", det.KeywordIndex)
	}
	if det.SpanWords != 3 {
		t.Errorf("span = %d words, want 3 (keyword + two number words)", det.SpanWords)
	}
}
