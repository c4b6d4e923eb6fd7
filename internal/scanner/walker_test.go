package scanner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsAudioFile(t *testing.T) {
	audio := []string{"a.mp3", "b.M4B", "c.wav", "d.aac", "e.m4a"}
	for _, p := range audio {
		if !IsAudioFile(p) {
			t.Errorf("expected %q to be audio", p)
		}
	}
	notAudio := []string{"a.srt", "a.chapters.json", "a.txt", "a.flacx", "noext"}
	for _, p := range notAudio {
		if IsAudioFile(p) {
			t.Errorf("expected %q to NOT be audio", p)
		}
	}
}

func TestWalkDiscoversAudioFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "book1.mp3"))
	touch(t, filepath.Join(root, "series", "book2.m4b"))
	touch(t, filepath.Join(root, "book1.srt"))          // sidecar, skipped
	touch(t, filepath.Join(root, "book1.chapters.json")) // sidecar, skipped
	touch(t, filepath.Join(root, ".hidden", "book3.mp3"))
	touch(t, filepath.Join(root, ".DS_Store"))

	w := NewWalker(testLogger())
	var got []WalkResult
	for r := range w.Walk(context.Background(), root) {
		got = append(got, r)
	}

	if len(got) != 2 {
		t.Fatalf("discovered %d files, want 2: %+v", len(got), got)
	}

	rels := map[string]bool{}
	for _, r := range got {
		rels[r.RelPath] = true
		if r.Size == 0 {
			t.Errorf("%s reported size 0", r.RelPath)
		}
	}
	if !rels["book1.mp3"] || !rels[filepath.Join("series", "book2.m4b")] {
		t.Errorf("unexpected rel paths: %v", rels)
	}
}

func TestWalkMissingRootIsEmpty(t *testing.T) {
	w := NewWalker(testLogger())

	count := 0
	for range w.Walk(context.Background(), filepath.Join(t.TempDir(), "does-not-exist")) {
		count++
	}
	if count != 0 {
		t.Errorf("got %d results from a missing root, want 0", count)
	}
}

func TestWalkCanceledContext(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		touch(t, filepath.Join(root, "book", "file"+string(rune('a'+i%26))+".mp3"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWalker(testLogger())
	count := 0
	for range w.Walk(ctx, root) {
		count++
	}
	// The walk may deliver a buffered handful before noticing; it must stop.
	if count > 20 {
		t.Errorf("walk delivered %d results after cancellation", count)
	}
}
