// Package srt reads and writes SubRip subtitle files. chaptersplit uses SRT
// as a re-parseable transcription cache: one cue per recognized span.
package srt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chaptersplit/chaptersplit/internal/domain"
)

// FormatTime converts seconds to the SRT timestamp form HH:MM:SS,mmm.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseTime converts an SRT timestamp (HH:MM:SS,mmm) to seconds.
func ParseTime(ts string) (float64, error) {
	var h, m, s, ms int
	if _, err := fmt.Sscanf(strings.TrimSpace(ts), "%d:%d:%d,%d", &h, &m, &s, &ms); err != nil {
		return 0, fmt.Errorf("invalid srt timestamp %q: %w", ts, err)
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// Write renders tokens as numbered SRT cues.
func Write(w io.Writer, tokens []domain.TranscriptToken) error {
	bw := bufio.NewWriter(w)
	for i, tok := range tokens {
		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n", FormatTime(tok.Start), FormatTime(tok.End))
		fmt.Fprintf(bw, "%s\n\n", strings.TrimSpace(tok.Text))
	}
	return bw.Flush()
}

// WriteFile writes tokens to an SRT file.
func WriteFile(path string, tokens []domain.TranscriptToken) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create srt file: %w", err)
	}
	if err := Write(f, tokens); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read parses SRT content into tokens, one per cue. Cue numbers are ignored;
// cues missing a timestamp or text line are skipped.
func Read(r io.Reader) ([]domain.TranscriptToken, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var tokens []domain.TranscriptToken
	blocks := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}

		times := strings.SplitN(lines[1], "-->", 2)
		if len(times) != 2 {
			continue
		}
		start, err := ParseTime(times[0])
		if err != nil {
			continue
		}
		end, err := ParseTime(times[1])
		if err != nil {
			continue
		}

		tokens = append(tokens, domain.TranscriptToken{
			Text:  strings.TrimSpace(strings.Join(lines[2:], " ")),
			Start: start,
			End:   end,
		})
	}
	return tokens, nil
}

// ReadFile parses an SRT file into tokens.
func ReadFile(path string) ([]domain.TranscriptToken, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
