package segmenter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/source"
)

func TestArchiveMovesSourceAndSidecars(t *testing.T) {
	inDir := t.TempDir()
	doneDir := t.TempDir()

	subDir := filepath.Join(inDir, "series", "volume1")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(subDir, "book.mp3")
	for _, p := range []string{path, source.SRTCachePath(path), source.JSONCachePath(path)} {
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	asset := &domain.AudioAsset{Path: path, RelPath: filepath.Join("series", "volume1", "book.mp3")}
	a := NewArchiver(doneDir, testLogger())
	if err := a.Archive(asset); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	// Everything moved under doneDir, mirroring the input-relative layout.
	for _, name := range []string{"book.mp3", "book.srt", "book.chapters.json"} {
		dest := filepath.Join(doneDir, "series", "volume1", name)
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("%s not archived: %v", name, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("source file still present in input directory")
	}
}

func TestArchiveMissingSidecarsAreSkipped(t *testing.T) {
	inDir := t.TempDir()
	doneDir := t.TempDir()

	path := filepath.Join(inDir, "book.mp3")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	asset := &domain.AudioAsset{Path: path, RelPath: "book.mp3"}
	a := NewArchiver(doneDir, testLogger())
	if err := a.Archive(asset); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if _, err := os.Stat(filepath.Join(doneDir, "book.mp3")); err != nil {
		t.Errorf("source not archived: %v", err)
	}
}
