// Package watcher monitors the input directory for newly dropped recordings.
// Events are debounced: a file must stop growing for the settle delay before
// it is reported, so half-copied recordings are never processed.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a settled file ready for processing.
type Event struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Watcher wraps fsnotify with settle debouncing.
type Watcher struct {
	logger      *slog.Logger
	settleDelay time.Duration
	accept      func(path string) bool

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingEvent

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
}

// pendingEvent tracks a file that may still be changing.
type pendingEvent struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a watcher. accept filters paths before any timer is armed;
// pass nil to accept everything.
func New(logger *slog.Logger, settleDelay time.Duration, accept func(string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &Watcher{
		logger:      logger,
		settleDelay: settleDelay,
		accept:      accept,
		watcher:     fw,
		pending:     make(map[string]*pendingEvent),
		events:      make(chan Event, 16),
		done:        make(chan struct{}),
	}, nil
}

// Watch adds root and its existing subdirectories to the watch set.
func (w *Watcher) Watch(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("failed to access path", "path", p, "error", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Error("failed to add watch", "path", p, "error", err)
			return nil
		}
		w.logger.Debug("added watch", "path", p)
		return nil
	})
}

// Events returns the channel of settled files.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start processes raw fsnotify events until the context ends. It blocks;
// run it in its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Stop releases the underlying watcher and cancels pending timers.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.pending = map[string]*pendingEvent{}
	w.mu.Unlock()

	return err
}

// handle arms or re-arms the settle timer for a changed path. A directory
// creation extends the watch set instead.
func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if err := w.watcher.Add(ev.Name); err != nil {
				w.logger.Error("failed to watch new directory", "path", ev.Name, "error", err)
			}
		}
		return
	}

	if !w.accept(ev.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[ev.Name]; ok {
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer.Reset(w.settleDelay)
		return
	}

	p := &pendingEvent{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.settleDelay, func() {
		w.settle(ev.Name)
	})
	w.pending[ev.Name] = p
}

// settle fires when a path stopped changing for the settle delay. If the file
// grew in the meantime the timer is re-armed instead of emitting.
func (w *Watcher) settle(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer.Reset(w.settleDelay)
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	select {
	case w.events <- Event{Path: path, Size: info.Size(), ModTime: info.ModTime()}:
	case <-w.done:
	}
}
