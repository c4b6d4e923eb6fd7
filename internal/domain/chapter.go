// Package domain defines the core types shared across the chaptersplit pipeline.
package domain

import (
	"fmt"
	"sort"
)

// Source identifies where a chapter list came from. Sources are never blended
// within one file; the tag exists for diagnostics and the run ledger.
type Source string

const (
	SourceEmbedded      Source = "embedded"
	SourceJSONCache     Source = "json_cache"
	SourceSRTCache      Source = "srt_cache"
	SourceTranscription Source = "transcription"
)

// ChapterMark is one resolved chapter boundary.
type ChapterMark struct {
	// Ordinal is the 1-based chapter number as spoken or tagged in the audio.
	// Ordinals may skip ahead (a recording that drops chapter 7) but never
	// repeat or go backwards.
	Ordinal int `json:"ordinal"`

	// Title is empty unless title extraction is enabled and a title was
	// confidently isolated.
	Title string `json:"title,omitempty"`

	// StartTime is the boundary position in seconds from the start of the file.
	StartTime float64 `json:"start_time"`

	Source Source `json:"-"`
}

// NormalizeMarks sorts marks by ordinal, drops duplicate ordinals keeping the
// earlier-occurring detection, and rejects any remaining start-time inversion.
// The returned list satisfies the ordering invariant: ordinal and start time
// are both strictly increasing.
func NormalizeMarks(marks []ChapterMark) ([]ChapterMark, error) {
	if len(marks) == 0 {
		return nil, nil
	}

	// Stable sort so that for equal ordinals the earlier detection stays first.
	sorted := make([]ChapterMark, len(marks))
	copy(sorted, marks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ordinal < sorted[j].Ordinal
	})

	out := sorted[:0]
	for _, m := range sorted {
		if m.Ordinal < 1 {
			return nil, fmt.Errorf("chapter ordinal %d is not positive", m.Ordinal)
		}
		if len(out) > 0 && m.Ordinal == out[len(out)-1].Ordinal {
			// Duplicate ordinal: keep the earlier detection.
			continue
		}
		out = append(out, m)
	}

	for i := 1; i < len(out); i++ {
		if out[i].StartTime <= out[i-1].StartTime {
			return nil, fmt.Errorf("chapter %d starts at %.3fs, not after chapter %d at %.3fs",
				out[i].Ordinal, out[i].StartTime, out[i-1].Ordinal, out[i-1].StartTime)
		}
	}

	if out[0].StartTime < 0 {
		return nil, fmt.Errorf("chapter %d has negative start time %.3f", out[0].Ordinal, out[0].StartTime)
	}

	result := make([]ChapterMark, len(out))
	copy(result, out)
	return result, nil
}

// ValidateMarks reports whether marks already satisfy the ordering invariant
// without repairing them. Used when loading a cache that must be taken as-is.
func ValidateMarks(marks []ChapterMark) error {
	for i, m := range marks {
		if m.Ordinal < 1 {
			return fmt.Errorf("chapter ordinal %d is not positive", m.Ordinal)
		}
		if m.StartTime < 0 {
			return fmt.Errorf("chapter %d has negative start time %.3f", m.Ordinal, m.StartTime)
		}
		if i == 0 {
			continue
		}
		if m.Ordinal <= marks[i-1].Ordinal {
			return fmt.Errorf("chapter ordinals not strictly increasing: %d after %d", m.Ordinal, marks[i-1].Ordinal)
		}
		if m.StartTime <= marks[i-1].StartTime {
			return fmt.Errorf("chapter start times not strictly increasing: %.3f after %.3f", m.StartTime, marks[i-1].StartTime)
		}
	}
	return nil
}

// Tag returns the provenance of a chapter list. All marks in a valid list
// carry the same source.
func Tag(marks []ChapterMark, src Source) []ChapterMark {
	for i := range marks {
		marks[i].Source = src
	}
	return marks
}
