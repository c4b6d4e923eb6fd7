package transcribe

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/chaptersplit/chaptersplit/internal/domain"
	"github.com/chaptersplit/chaptersplit/internal/errors"
)

// modelWeightsFile is the file that must exist inside a resolved model
// directory. Model acquisition itself happens outside this program.
const modelWeightsFile = "model.bin"

// WhisperCLI is a Recognizer that shells out to a whisper.cpp-style CLI and
// parses its JSON output. One instance holds one resolved model; wrap it in
// Serialize before sharing across goroutines, the engine is single-threaded
// per model.
type WhisperCLI struct {
	binary   string
	model    string
	language string
	device   string
}

// ResolveModel checks that the model directory for key exists under
// modelsDir and contains the model weights.
func ResolveModel(modelsDir, key string) (string, error) {
	modelPath := filepath.Join(modelsDir, key)
	weights := filepath.Join(modelPath, modelWeightsFile)
	if _, err := os.Stat(weights); err != nil {
		return "", errors.NotFoundf("model %q not found locally at %s", key, modelPath)
	}
	return weights, nil
}

// NewWhisperCLI creates a recognizer. binary may be empty, in which case
// whisper-cli is looked up on the PATH. modelWeights is the path returned by
// ResolveModel.
func NewWhisperCLI(binary, modelWeights, language, device string) (*WhisperCLI, error) {
	if binary == "" {
		found, err := exec.LookPath("whisper-cli")
		if err != nil {
			return nil, errors.NotFound("whisper-cli not found on PATH")
		}
		binary = found
	}
	return &WhisperCLI{
		binary:   binary,
		model:    modelWeights,
		language: language,
		device:   device,
	}, nil
}

// Transcribe runs the CLI over one decoded window and returns its tokens with
// window-relative timestamps.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) ([]domain.TranscriptToken, error) {
	outPrefix := audioPath + ".out"

	args := []string{
		"-m", w.model,
		"-f", audioPath,
		"-l", w.language,
		"--output-json",
		"--output-file", outPrefix,
	}
	if w.device == "cpu" {
		args = append(args, "--no-gpu")
	}

	cmd := exec.CommandContext(ctx, w.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper-cli failed: %w\n%s", err, string(out))
	}

	jsonPath := outPrefix + ".json"
	defer os.Remove(jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var result whisperOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	tokens := make([]domain.TranscriptToken, 0, len(result.Transcription))
	for _, seg := range result.Transcription {
		tokens = append(tokens, domain.TranscriptToken{
			Text:  seg.Text,
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
		})
	}
	return tokens, nil
}

// whisperOutput mirrors the whisper.cpp JSON structure.
type whisperOutput struct {
	Transcription []whisperSegment `json:"transcription"`
}

type whisperSegment struct {
	Text    string `json:"text"`
	Offsets struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	} `json:"offsets"`
}
