package parser

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple sentence",
			in:   "The Boy Who Lived. It was nearly midnight.",
			want: "The Boy Who Lived",
		},
		{
			name: "honorific period does not terminate",
			in:   "The Return of Mr. Smith. It was raining.",
			want: "The Return of Mr. Smith",
		},
		{
			name: "single letter initial does not terminate",
			in:   "A Study by J. R. R. Tolkien. The story begins.",
			want: "A Study by J. R. R. Tolkien",
		},
		{
			name: "question mark terminates",
			in:   "Who Goes There? Nobody knew the answer.",
			want: "Who Goes There",
		},
		{
			name: "exclamation terminates",
			in:   "Fire! The alarm rang out.",
			want: "Fire",
		},
		{
			name: "no terminator keeps everything",
			in:   "The Long Road Home",
			want: "The Long Road Home",
		},
		{
			name: "period before lowercase is not a boundary",
			in:   "the fall. of rome. It crumbled.",
			want: "the fall. of rome",
		},
		{
			name: "doctor honorific",
			in:   "Dr. Jekyll Returns. Meanwhile in London.",
			want: "Dr. Jekyll Returns",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.in); got != tt.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One ends here. Two ends here. three continues")
	want := []string{"One ends here.", "Two ends here. three continues"}
	if len(got) != len(want) {
		t.Fatalf("splitSentences returned %d parts, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}
