package segmenter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/source"
)

// Archiver moves consumed inputs and their cache sidecars into the done
// directory, mirroring the input-relative layout. It runs only after every
// chapter of a file was written successfully.
type Archiver struct {
	doneDir string
	logger  *slog.Logger
}

// NewArchiver creates an archiver rooted at doneDir.
func NewArchiver(doneDir string, logger *slog.Logger) *Archiver {
	return &Archiver{doneDir: doneDir, logger: logger}
}

// Archive moves the source file plus any sidecar caches. Sidecars travel with
// the source so a restored input brings its caches back too.
func (a *Archiver) Archive(asset *domain.AudioAsset) error {
	targetDir := filepath.Join(a.doneDir, filepath.Dir(asset.RelPath))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	paths := []string{
		asset.Path,
		source.SRTCachePath(asset.Path),
		source.JSONCachePath(asset.Path),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		dest := filepath.Join(targetDir, filepath.Base(p))
		if err := moveFile(p, dest); err != nil {
			return fmt.Errorf("archive %s: %w", filepath.Base(p), err)
		}
		a.logger.Info("archived", "file", filepath.Base(p), "to", targetDir)
	}

	return nil
}

// moveFile renames, falling back to copy+remove across filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
