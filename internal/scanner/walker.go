// Package scanner discovers source recordings under the input directory.
package scanner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions are the container formats the pipeline accepts.
var supportedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".aac": true,
	".m4a": true,
	".m4b": true,
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Walker traverses the input directory and discovers recordings.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new walker.
func NewWalker(logger *slog.Logger) *Walker {
	return &Walker{logger: logger}
}

// WalkResult represents a recording discovered during walking.
type WalkResult struct {
	Path    string
	RelPath string
	Size    int64
}

// Walk traverses rootPath and streams discovered audio files in directory
// order. The channel closes when the walk completes or the context is
// canceled. Hidden files and cache sidecars are skipped; an absent root is an
// empty walk (re-running over an archived batch is a no-op).
func (w *Walker) Walk(ctx context.Context, rootPath string) <-chan WalkResult {
	results := make(chan WalkResult, 16)

	go func() {
		defer close(results)

		if _, err := os.Stat(rootPath); os.IsNotExist(err) {
			w.logger.Warn("input directory does not exist, nothing to do", "path", rootPath)
			return
		}

		err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				w.logger.Error("walk error", "path", path, "error", err)
				// Continue walking despite errors.
				return nil
			}

			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() || !IsAudioFile(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				w.logger.Error("failed to get file info", "path", path, "error", err)
				return nil
			}

			relPath, err := filepath.Rel(rootPath, path)
			if err != nil {
				w.logger.Error("failed to compute relative path", "path", path, "error", err)
				relPath = filepath.Base(path)
			}

			select {
			case results <- WalkResult{Path: path, RelPath: relPath, Size: info.Size()}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil && !errors.Is(err, context.Canceled) && !os.IsNotExist(err) {
			w.logger.Error("walk failed", "root", rootPath, "error", err)
		}
	}()

	return results
}
