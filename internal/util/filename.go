// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const maxFilenameRunes = 100

var (
	// Matches characters that are reserved on at least one target filesystem.
	reservedCharsRe = regexp.MustCompile(`[\\/*?:"<>|]`)
	// Matches runs of whitespace (for replacement with dots).
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Matches runs of dots.
	multipleDotRe = regexp.MustCompile(`\.{2,}`)
)

// SanitizeFilename renders a chapter title as a filesystem-safe name fragment.
//
// Rules:
//  1. Unicode-normalize (NFC) and trim whitespace
//  2. Strip reserved characters (\ / * ? : " < > |)
//  3. Replace whitespace runs with a single dot
//  4. Collapse dot runs and trim leading/trailing dots
//  5. Truncate to 100 runes
//
// Examples:
//
//	"The Return: Part Two"  → "The.Return.Part.Two"
//	"  What? No. "          → "What.No"
func SanitizeFilename(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))

	s = reservedCharsRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, ".")
	s = multipleDotRe.ReplaceAllString(s, ".")
	s = strings.Trim(s, ".")

	runes := []rune(s)
	if len(runes) > maxFilenameRunes {
		s = strings.Trim(string(runes[:maxFilenameRunes]), ".")
	}
	return s
}
