// Package timeline maps chapter marker detections onto absolute audio
// timestamps using the token stream they were detected in.
package timeline

import (
	"log/slog"
	"sort"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/parser"
)

// Detection pairs a parser detection with the token it was found in.
type Detection struct {
	parser.Detection
	TokenIndex int
}

// DetectAll runs the parser over every token window in order. Each token's
// text is one window; the following token's text is offered as continuation
// for titles that spill across a window boundary.
func DetectAll(p *parser.Parser, tokens []domain.TranscriptToken) []Detection {
	var out []Detection
	for i, tok := range tokens {
		continuation := ""
		if i+1 < len(tokens) {
			continuation = tokens[i+1].Text
		}
		if det, ok := p.Detect(tok.Text, continuation); ok {
			out = append(out, Detection{Detection: det, TokenIndex: i})
		}
	}
	return out
}

// Resolve assigns each detection the start time of the token holding its
// matched span and produces the final ordered chapter list.
//
// Repairs applied, each with a diagnostic:
//   - detections whose token cannot be located are dropped, never misplaced
//   - duplicate ordinals collapse to the earlier-occurring detection
//   - a mark whose start time does not advance past the previous kept mark
//     is dropped, so ordinal order and time order never diverge
func Resolve(log *slog.Logger, tokens []domain.TranscriptToken, detections []Detection) []domain.ChapterMark {
	marks := make([]domain.ChapterMark, 0, len(detections))
	for _, det := range detections {
		if det.TokenIndex < 0 || det.TokenIndex >= len(tokens) {
			log.Warn("chapter detection outside token stream, dropping",
				"ordinal", det.Ordinal,
				"token_index", det.TokenIndex,
				"tokens", len(tokens),
			)
			continue
		}
		marks = append(marks, domain.ChapterMark{
			Ordinal:   det.Ordinal,
			Title:     det.Title,
			StartTime: tokens[det.TokenIndex].Start,
		})
	}

	if len(marks) == 0 {
		return nil
	}

	// Stable sort keeps the earlier detection first among equal ordinals.
	sort.SliceStable(marks, func(i, j int) bool {
		return marks[i].Ordinal < marks[j].Ordinal
	})

	out := marks[:0]
	for _, m := range marks {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if m.Ordinal == prev.Ordinal {
				log.Debug("duplicate chapter ordinal, keeping earlier detection",
					"ordinal", m.Ordinal,
					"kept_start", prev.StartTime,
					"dropped_start", m.StartTime,
				)
				continue
			}
			if m.StartTime <= prev.StartTime {
				log.Warn("chapter start time does not advance, dropping",
					"ordinal", m.Ordinal,
					"start", m.StartTime,
					"previous_start", prev.StartTime,
				)
				continue
			}
		}
		out = append(out, m)
	}

	result := make([]domain.ChapterMark, len(out))
	copy(result, out)
	return result
}
