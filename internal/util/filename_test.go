package util

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become dots", "The Return", "The.Return"},
		{"reserved characters stripped", `The Return: Part Two`, "The.Return.Part.Two"},
		{"all reserved stripped", `a\b/c*d?e:f"g<h>i|j`, "abcdefghij"},
		{"whitespace runs collapse", "What  \t No", "What.No"},
		{"question marks stripped", "What? No.", "What.No"},
		{"leading trailing trimmed", "  What? No. ", "What.No"},
		{"dot runs collapse", "a.. b...c", "a.b.c"},
		{"empty", "", ""},
		{"only reserved", `\/:*?"<>|`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := SanitizeFilename(long)
	if len([]rune(got)) != 100 {
		t.Errorf("length = %d runes, want 100", len([]rune(got)))
	}
}
