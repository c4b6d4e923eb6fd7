package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// SegmentTags are the tags written onto each chapter output file.
type SegmentTags struct {
	Title  string
	Album  string
	Artist string
	Track  int
}

// Available reports whether ffmpeg and ffprobe are on the PATH.
func Available() bool {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// ExtractCover writes the embedded cover art to coverPath as a JPEG.
// Callers should only invoke this when Probe reported a cover.
func ExtractCover(ctx context.Context, inputPath, coverPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-an",
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		coverPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg cover extraction failed: %w\n%s", err, string(out))
	}
	return nil
}

// ExtractWindow decodes a time window of the input to 16 kHz mono PCM, the
// sample format speech recognizers expect. The window is decoded on demand so
// the full recording never has to be held in memory.
func ExtractWindow(ctx context.Context, inputPath string, start, length float64, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(length),
		"-i", inputPath,
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-y",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg window decode failed: %w\n%s", err, string(out))
	}
	return nil
}

// CutSegment writes [start, end) of the input as an independent MP3 file with
// the given tags, attaching cover art when coverPath is non-empty. The cover
// is read from its own file, so the source keeps its copy.
func CutSegment(ctx context.Context, inputPath string, start, end float64, outPath string, tags SegmentTags, coverPath string) error {
	args := []string{
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", inputPath,
	}

	if coverPath != "" {
		args = append(args,
			"-i", coverPath,
			"-map", "0:a",
			"-map", "1:v",
			"-c:v", "copy",
			"-disposition:v", "attached_pic",
			"-id3v2_version", "3",
		)
	} else {
		args = append(args, "-map", "0:a")
	}

	args = append(args,
		"-c:a", "libmp3lame",
		"-b:a", "192k",
	)

	if tags.Title != "" {
		args = append(args, "-metadata", "title="+tags.Title)
	}
	if tags.Album != "" {
		args = append(args, "-metadata", "album="+tags.Album)
	}
	if tags.Artist != "" {
		args = append(args, "-metadata", "artist="+tags.Artist)
	}
	if tags.Track > 0 {
		args = append(args, "-metadata", "track="+strconv.Itoa(tags.Track))
	}

	args = append(args, "-y", outPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg segment cut failed: %w\n%s", err, string(out))
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
