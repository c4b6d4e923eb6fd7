// Package media wraps the ffmpeg/ffprobe subprocess layer: duration and tag
// probing, cover extraction, windowed decoding, and segment cutting.
package media

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeResult holds the container facts the pipeline needs from one file.
type ProbeResult struct {
	Duration float64
	Format   string
	Tags     map[string]string
	Chapters []ProbedChapter
	HasCover bool
}

// ProbedChapter is one entry of the container's native chapter table.
type ProbedChapter struct {
	StartTime float64
	Title     string
}

// Probe extracts duration, format, tags, the native chapter table, and cover
// presence using ffprobe.
func Probe(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_chapters",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var data ffprobeOutput
	if err := json.Unmarshal(output, &data); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	result := &ProbeResult{
		Tags: data.Format.Tags,
	}

	if data.Format.FormatName != "" {
		// Get first format (e.g., "mp3" from "mp3,mp2").
		result.Format = strings.Split(data.Format.FormatName, ",")[0]
	}

	if data.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil {
			result.Duration = dur
		}
	}
	if result.Duration <= 0 {
		return nil, fmt.Errorf("ffprobe reported no duration for %s", path)
	}

	for _, stream := range data.Streams {
		// Embedded cover art appears as an attached video stream.
		if stream.CodecType == "video" {
			result.HasCover = true
			break
		}
	}

	for _, ch := range data.Chapters {
		chapter := ProbedChapter{}
		if ch.StartTime != "" {
			if start, err := strconv.ParseFloat(ch.StartTime, 64); err == nil {
				chapter.StartTime = start
			}
		}
		if ch.Tags != nil {
			chapter.Title = ch.Tags["title"]
		}
		result.Chapters = append(result.Chapters, chapter)
	}

	return result, nil
}

// ffprobeOutput represents ffprobe JSON output.
type ffprobeOutput struct {
	Format   ffprobeFormat    `json:"format"`
	Streams  []ffprobeStream  `json:"streams"`
	Chapters []ffprobeChapter `json:"chapters"`
}

type ffprobeFormat struct {
	Tags       map[string]string `json:"tags"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
}

type ffprobeChapter struct {
	Tags      map[string]string `json:"tags"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	ID        int               `json:"id"`
}
