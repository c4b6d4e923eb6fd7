package parser

import (
	"strings"
	"unicode"
)

// honorifics are abbreviations whose trailing period never ends a title.
var honorifics = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {},
	"st": {}, "vol": {}, "no": {}, "etc": {}, "rev": {}, "capt": {},
}

// ExtractTitle isolates a chapter title from the text following a chapter
// marker, stopping at the first true sentence terminator. A period does not
// terminate when the word it closes is an honorific ("Mr.") or a single
// letter ("J. R. R. Tolkien"). The returned title carries no trailing
// terminator.
func ExtractTitle(text string) string {
	if text == "" {
		return ""
	}

	var parts []string
	for _, sentence := range splitSentences(text) {
		parts = append(parts, sentence)

		words := strings.Fields(strings.TrimRight(sentence, ".?!"))
		if len(words) == 0 {
			break
		}

		last := strings.ToLower(words[len(words)-1])
		if _, ok := honorifics[last]; ok {
			continue
		}
		if len([]rune(last)) == 1 && isAlpha(last) {
			continue
		}
		break
	}

	title := strings.TrimSpace(strings.Join(parts, " "))
	return strings.TrimSpace(strings.TrimRight(title, ".?!"))
}

// splitSentences splits after each [.?!] that is followed by whitespace and a
// capital letter. Go regexps have no lookbehind, so this is a manual scan.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes)-1; i++ {
		if !isTerminator(runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		// Skip the whitespace run; only a following capital opens a sentence.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j >= len(runes) || !unicode.IsUpper(runes[j]) {
			continue
		}
		out = append(out, strings.TrimSpace(string(runes[start:i+1])))
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, strings.TrimSpace(string(runes[start:])))
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
