package transcribe

import (
	"context"
	"sync"

	"github.com/chaptersplit/chaptersplit/internal/domain"
)

// Lazy defers recognizer construction until the first transcription request.
// Runs that resolve every file from embedded chapters or caches never touch
// the model or the recognizer binary, so neither has to exist for them.
type Lazy struct {
	mu      sync.Mutex
	factory func() (Recognizer, error)
	rec     Recognizer
}

// NewLazy wraps a recognizer factory. The factory runs at most once.
func NewLazy(factory func() (Recognizer, error)) *Lazy {
	return &Lazy{factory: factory}
}

// Transcribe implements Recognizer.
func (l *Lazy) Transcribe(ctx context.Context, audioPath string) ([]domain.TranscriptToken, error) {
	rec, err := l.get()
	if err != nil {
		return nil, err
	}
	return rec.Transcribe(ctx, audioPath)
}

func (l *Lazy) get() (Recognizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rec == nil {
		rec, err := l.factory()
		if err != nil {
			return nil, err
		}
		l.rec = rec
	}
	return l.rec, nil
}
