package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
	"github.com/chaptersplit/chaptersplit/internal/media"
)

// endTolerance is how far past the container duration the merged stream's
// final token may reach before it is clamped. Lossy codecs pad the tail.
const endTolerance = 2.0

// WindowDecoder decodes one time window of a recording to a standalone file
// the recognizer can consume.
type WindowDecoder interface {
	ExtractWindow(ctx context.Context, inputPath string, start, length float64, outPath string) error
}

// FFmpegDecoder decodes windows with ffmpeg.
type FFmpegDecoder struct{}

// ExtractWindow implements WindowDecoder.
func (FFmpegDecoder) ExtractWindow(ctx context.Context, inputPath string, start, length float64, outPath string) error {
	return media.ExtractWindow(ctx, inputPath, start, length, outPath)
}

// Coordinator transcribes long recordings in fixed-size, non-overlapping
// windows so the whole decoded waveform never has to fit in memory. Files at
// or below Threshold use one window spanning the full duration; that is the
// same code path, not a special case.
type Coordinator struct {
	recognizer Recognizer
	decoder    WindowDecoder
	logger     *slog.Logger

	// Threshold is the duration above which audio is split into windows.
	Threshold time.Duration
	// Window is the window length used when splitting.
	Window time.Duration
}

// NewCoordinator creates a chunked transcription coordinator.
func NewCoordinator(rec Recognizer, dec WindowDecoder, logger *slog.Logger, threshold, window time.Duration) *Coordinator {
	return &Coordinator{
		recognizer: rec,
		decoder:    dec,
		logger:     logger,
		Threshold:  threshold,
		Window:     window,
	}
}

// window is one bounded slice of the recording.
type window struct {
	start  float64
	length float64
}

// partition splits duration into windows. One full-length window when the
// recording is at or below the chunking threshold, fixed-size windows (last
// one shorter) otherwise.
func (c *Coordinator) partition(duration float64) []window {
	if duration <= c.Threshold.Seconds() {
		return []window{{start: 0, length: duration}}
	}

	size := c.Window.Seconds()
	var windows []window
	for start := 0.0; start < duration; start += size {
		length := size
		if start+length > duration {
			length = duration - start
		}
		windows = append(windows, window{start: start, length: length})
	}
	return windows
}

// Transcribe produces one globally time-ordered token stream for the asset.
// Windows are processed strictly in increasing time order; each window's
// tokens are shifted by the window's absolute offset before being appended,
// and appended history is never touched again. A single failed window is
// fatal for the file: no partially shifted stream is ever returned.
func (c *Coordinator) Transcribe(ctx context.Context, asset *domain.AudioAsset) ([]domain.TranscriptToken, error) {
	scratch, err := os.MkdirTemp("", "chaptersplit-"+uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTranscription, "create scratch directory")
	}
	defer os.RemoveAll(scratch)

	windows := c.partition(asset.Duration)
	c.logger.Info("transcribing",
		"file", filepath.Base(asset.Path),
		"duration", asset.Duration,
		"windows", len(windows),
	)

	var merged []domain.TranscriptToken
	for i, win := range windows {
		c.logger.Debug("processing window",
			"window", i+1,
			"of", len(windows),
			"start", win.start,
			"length", win.length,
		)

		windowPath := filepath.Join(scratch, fmt.Sprintf("window_%03d.wav", i))
		if err := c.decoder.ExtractWindow(ctx, asset.Path, win.start, win.length, windowPath); err != nil {
			return nil, errors.Wrapf(err, errors.CodeTranscription, "decode window %d/%d", i+1, len(windows))
		}

		tokens, err := c.recognizer.Transcribe(ctx, windowPath)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeTranscription, "transcribe window %d/%d", i+1, len(windows))
		}

		merged, err = appendShifted(merged, tokens, win, i, asset.Duration, c.logger)
		if err != nil {
			return nil, err
		}

		// The window file is not needed once its tokens are merged.
		_ = os.Remove(windowPath)
	}

	return merged, nil
}

// appendShifted shifts tokens by the window offset and appends them to the
// merged stream, enforcing global time order across the chunk boundary.
func appendShifted(merged, tokens []domain.TranscriptToken, win window, chunk int, duration float64, log *slog.Logger) ([]domain.TranscriptToken, error) {
	var lastEnd float64
	if len(merged) > 0 {
		lastEnd = merged[len(merged)-1].End
	}

	for _, tok := range tokens {
		if tok.End < tok.Start {
			return nil, errors.Transcriptionf("window %d produced token ending before it starts (%.3f < %.3f)",
				chunk+1, tok.End, tok.Start)
		}

		tok.Start += win.start
		tok.End += win.start
		tok.Chunk = chunk

		// Recognizers occasionally emit a token reaching past the window
		// edge; clip it so it cannot overlap the next chunk's first token.
		if edge := win.start + win.length; tok.End > edge {
			tok.End = edge
			if tok.Start > tok.End {
				tok.Start = tok.End
			}
		}

		if tok.Start < lastEnd {
			return nil, errors.Transcriptionf("window %d token at %.3fs overlaps merged stream ending %.3fs",
				chunk+1, tok.Start, lastEnd)
		}

		if tok.End > duration+endTolerance {
			log.Warn("token end beyond container duration, clamping",
				"end", tok.End,
				"duration", duration,
			)
			tok.End = duration
		}

		merged = append(merged, tok)
		lastEnd = tok.End
	}

	return merged, nil
}
