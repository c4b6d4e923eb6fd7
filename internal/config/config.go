// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Paths      PathsConfig
	Transcribe TranscribeConfig
	Split      SplitConfig
	Watch      WatchConfig
	Ledger     LedgerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `validate:"required,oneof=debug info warn error"`
	Format string `validate:"omitempty,oneof=pretty json"`
}

// PathsConfig holds the directory layout the pipeline works in.
type PathsConfig struct {
	// InputDir is scanned (or watched) for source recordings.
	InputDir string `validate:"required"`
	// OutputDir receives per-chapter files, mirroring InputDir's layout.
	OutputDir string `validate:"required"`
	// DoneDir receives consumed inputs and their caches after a successful split.
	DoneDir string `validate:"required"`
	// ModelsDir holds locally resolved recognizer models.
	ModelsDir string `validate:"required"`
}

// TranscribeConfig holds speech recognition configuration.
type TranscribeConfig struct {
	// ModelKey names the model directory under ModelsDir.
	ModelKey string `validate:"required"`
	// Device selects the inference device.
	Device string `validate:"required,oneof=cpu cuda"`
	// Language is the spoken language hint passed to the recognizer.
	Language string `validate:"required"`
	// ChunkThreshold is the duration above which audio is transcribed in
	// bounded windows instead of one pass.
	ChunkThreshold time.Duration `validate:"gt=0"`
	// ChunkWindow is the window length used when chunking.
	ChunkWindow time.Duration `validate:"gt=0"`
	// WhisperPath overrides auto-detection of the recognizer binary.
	WhisperPath string
}

// SplitConfig holds segmentation configuration.
type SplitConfig struct {
	// ExtractTitle enables chapter title extraction and title-bearing filenames.
	ExtractTitle bool
	// Workers caps concurrent file pipelines (default 1: sequential batch).
	Workers int `validate:"gte=1"`
}

// WatchConfig holds watch-mode configuration.
type WatchConfig struct {
	Enabled bool
	// SettleDelay is how long a file must stop changing before it is processed.
	SettleDelay time.Duration `validate:"gt=0"`
}

// LedgerConfig holds run ledger configuration.
type LedgerConfig struct {
	// Path is the SQLite database location. Empty disables the ledger.
	Path string
	// History, when positive, prints the most recent N runs and exits.
	History int `validate:"gte=0"`
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (pretty, json)")

	inputDir := flag.String("input-dir", "", "Directory scanned for source recordings")
	outputDir := flag.String("output-dir", "", "Directory for per-chapter output files")
	doneDir := flag.String("done-dir", "", "Archive directory for consumed inputs")
	modelsDir := flag.String("models-dir", "", "Directory holding local recognizer models")

	modelKey := flag.String("model", "", "Recognizer model key (default: base.en)")
	device := flag.String("device", "", "Inference device (cpu, cuda)")
	language := flag.String("language", "", "Spoken language hint (default: en)")
	chunkThreshold := flag.String("chunk-threshold", "", "Duration above which audio is chunked (default: 30m)")
	chunkWindow := flag.String("chunk-window", "", "Transcription window length (default: 15m)")
	whisperPath := flag.String("whisper-path", "", "Path to recognizer binary (default: auto-detect)")

	extractTitle := flag.String("extract-title", "", "Extract chapter titles into filenames (default: true)")
	workers := flag.String("workers", "", "Concurrent file pipelines (default: 1)")

	watch := flag.String("watch", "", "Keep watching the input directory (default: false)")
	settleDelay := flag.String("settle-delay", "", "Watch-mode settle delay (default: 5s)")

	ledgerPath := flag.String("ledger", "", "SQLite run ledger path (empty disables)")
	history := flag.String("history", "", "Print the N most recent ledger runs and exit")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Paths: PathsConfig{
			InputDir:  getConfigValue(*inputDir, "INPUT_DIR", "input"),
			OutputDir: getConfigValue(*outputDir, "OUTPUT_DIR", "output"),
			DoneDir:   getConfigValue(*doneDir, "DONE_DIR", "done"),
			ModelsDir: getConfigValue(*modelsDir, "MODELS_DIR", "models"),
		},
		Transcribe: TranscribeConfig{
			ModelKey:    getConfigValue(*modelKey, "MODEL_KEY", "base.en"),
			Device:      getConfigValue(*device, "DEVICE", "cpu"),
			Language:    getConfigValue(*language, "LANGUAGE", "en"),
			WhisperPath: getConfigValue(*whisperPath, "WHISPER_PATH", ""),
		},
		Split: SplitConfig{
			ExtractTitle: getBoolConfigValue(*extractTitle, "EXTRACT_TITLE", true),
			Workers:      getIntConfigValue(*workers, "WORKERS", 1),
		},
		Watch: WatchConfig{
			Enabled: getBoolConfigValue(*watch, "WATCH", false),
		},
		Ledger: LedgerConfig{
			Path:    getConfigValue(*ledgerPath, "LEDGER_PATH", ""),
			History: getIntConfigValue(*history, "HISTORY", 0),
		},
	}

	var err error
	cfg.Transcribe.ChunkThreshold, err = parseDurationValue(*chunkThreshold, "CHUNK_THRESHOLD", "30m")
	if err != nil {
		return nil, err
	}
	cfg.Transcribe.ChunkWindow, err = parseDurationValue(*chunkWindow, "CHUNK_WINDOW", "15m")
	if err != nil {
		return nil, err
	}
	cfg.Watch.SettleDelay, err = parseDurationValue(*settleDelay, "SETTLE_DELAY", "5s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Transcribe.ChunkWindow > c.Transcribe.ChunkThreshold {
		return fmt.Errorf("chunk window %s exceeds chunk threshold %s",
			c.Transcribe.ChunkWindow, c.Transcribe.ChunkThreshold)
	}
	return nil
}

// expandPaths expands ~ and makes every configured path absolute.
func (c *Config) expandPaths() error {
	paths := []*string{
		&c.Paths.InputDir,
		&c.Paths.OutputDir,
		&c.Paths.DoneDir,
		&c.Paths.ModelsDir,
	}
	if c.Ledger.Path != "" {
		paths = append(paths, &c.Ledger.Path)
	}
	for _, p := range paths {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
