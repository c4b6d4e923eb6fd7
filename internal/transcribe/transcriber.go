// Package transcribe drives speech recognition over bounded audio windows and
// merges per-window output into one continuous, time-ordered token stream.
package transcribe

import (
	"context"
	"sync"

	"github.com/chaptersplit/chaptersplit/internal/domain"
)

// Recognizer converts one decoded audio window into ordered transcript
// tokens with window-relative timestamps. Implementations must be
// deterministic given identical audio bytes.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath string) ([]domain.TranscriptToken, error)
}

// Serialized wraps a recognizer whose engine forbids concurrent invocation on
// one loaded model. The lock guards the call only, never the surrounding
// pipeline.
type Serialized struct {
	mu    sync.Mutex
	inner Recognizer
}

// Serialize wraps rec so that calls are executed one at a time.
func Serialize(rec Recognizer) *Serialized {
	return &Serialized{inner: rec}
}

// Transcribe implements Recognizer.
func (s *Serialized) Transcribe(ctx context.Context, audioPath string) ([]domain.TranscriptToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Transcribe(ctx, audioPath)
}
