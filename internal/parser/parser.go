// Package parser recognizes chapter markers in recognized speech or subtitle
// text and extracts their ordinal and optional title.
package parser

import (
	"strings"
)

const chapterKeyword = "chapter"

// Detection is one recognized chapter marker inside a text window.
type Detection struct {
	// Ordinal is the parsed chapter number.
	Ordinal int
	// Title is empty when title extraction is disabled or nothing usable
	// followed the ordinal.
	Title string
	// KeywordIndex is the word index of the chapter keyword within the window.
	KeywordIndex int
	// SpanWords is how many words the marker consumed, keyword included.
	SpanWords int
}

// Parser detects chapter markers. Detection is best-effort: windows without a
// recognizable keyword+ordinal pair are a no-match, never an error.
type Parser struct {
	extractTitle bool
}

// New creates a parser. When extractTitle is set, the text between the marker
// and the first true sentence terminator becomes the chapter title.
func New(extractTitle bool) *Parser {
	return &Parser{extractTitle: extractTitle}
}

// Detect scans a text window for the first chapter marker. continuation is
// the text that follows the window (the next subtitle cue or recognized
// span); it is consulted only when the title would otherwise be empty,
// matching markers that end exactly at a window boundary.
func (p *Parser) Detect(window, continuation string) (Detection, bool) {
	words := strings.Fields(window)

	for i, w := range words {
		if cleanToken(w) != chapterKeyword || i+1 >= len(words) {
			continue
		}

		ordinal, consumed, ok := p.parseOrdinal(words[i+1:])
		if !ok {
			// Keyword with a malformed ordinal: skip this occurrence and
			// keep scanning rather than failing the window.
			continue
		}

		det := Detection{
			Ordinal:      ordinal,
			KeywordIndex: i,
			SpanWords:    1 + consumed,
		}

		if p.extractTitle {
			rest := strings.Join(words[i+1+consumed:], " ")
			if strings.TrimSpace(rest) == "" {
				rest = continuation
			}
			det.Title = ExtractTitle(strings.TrimSpace(rest))
		}

		return det, true
	}

	return Detection{}, false
}

// parseOrdinal parses the ordinal starting at the first token after the
// keyword, returning how many tokens it consumed. Arabic and Roman forms are
// always a single token; spelled-out forms may extend across several
// ("chapter one hundred and twelve").
func (p *Parser) parseOrdinal(tokens []string) (ordinal, consumed int, ok bool) {
	first := cleanToken(tokens[0])
	if first == "" {
		return 0, 0, false
	}

	if !isNumberWord(first) {
		// Arabic and Roman ordinals are always a single token.
		if n, ok := parseOrdinalToken(first); ok {
			return n, 1, true
		}
		return 0, 0, false
	}

	// Greedily take the longest run of number words that still parses.
	run := []string{first}
	for _, t := range tokens[1:] {
		c := cleanToken(t)
		if !isNumberWord(c) {
			break
		}
		run = append(run, c)
	}
	for len(run) > 0 {
		if n, ok := parseNumberWord(strings.Join(run, " ")); ok && n > 0 {
			return n, len(run), true
		}
		run = run[:len(run)-1]
	}
	return 0, 0, false
}

// cleanToken lowercases a word and strips surrounding punctuation so that
// "Chapter," and "Twelve:" compare cleanly.
func cleanToken(w string) string {
	return strings.ToLower(strings.Trim(w, ".,?!:;\"'"))
}
