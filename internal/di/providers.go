package di

import (
	"github.com/samber/do/v2"

	"github.com/chaptersplit/chaptersplit/internal/config"
	"github.com/chaptersplit/chaptersplit/internal/logger"
	"github.com/chaptersplit/chaptersplit/internal/parser"
	"github.com/chaptersplit/chaptersplit/internal/pipeline"
	"github.com/chaptersplit/chaptersplit/internal/scanner"
	"github.com/chaptersplit/chaptersplit/internal/segmenter"
	"github.com/chaptersplit/chaptersplit/internal/source"
	"github.com/chaptersplit/chaptersplit/internal/store"
	"github.com/chaptersplit/chaptersplit/internal/transcribe"
	"github.com/chaptersplit/chaptersplit/internal/watcher"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
	})

	return log, nil
}

// ProvideParser provides the chapter announcement parser.
func ProvideParser(i do.Injector) (*parser.Parser, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return parser.New(cfg.Split.ExtractTitle), nil
}

// ProvideRecognizer provides the speech recognizer. Construction is deferred
// to the first cold-path transcription, so the model and binary only have to
// exist when something actually needs transcribing. The recognizer is
// serialized: one inference at a time regardless of pipeline workers.
func ProvideRecognizer(i do.Injector) (transcribe.Recognizer, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return transcribe.NewLazy(func() (transcribe.Recognizer, error) {
		weights, err := transcribe.ResolveModel(cfg.Paths.ModelsDir, cfg.Transcribe.ModelKey)
		if err != nil {
			return nil, err
		}
		rec, err := transcribe.NewWhisperCLI(
			cfg.Transcribe.WhisperPath,
			weights,
			cfg.Transcribe.Language,
			cfg.Transcribe.Device,
		)
		if err != nil {
			return nil, err
		}
		return transcribe.Serialize(rec), nil
	}), nil
}

// ProvideCoordinator provides the chunked transcription coordinator.
func ProvideCoordinator(i do.Injector) (*transcribe.Coordinator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	rec := do.MustInvoke[transcribe.Recognizer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return transcribe.NewCoordinator(
		rec,
		transcribe.FFmpegDecoder{},
		log.Logger,
		cfg.Transcribe.ChunkThreshold,
		cfg.Transcribe.ChunkWindow,
	), nil
}

// ProvideJSONCache provides the chapter cache probe.
func ProvideJSONCache(i do.Injector) (*source.JSONCache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return source.NewJSONCache(cfg.Split.ExtractTitle, log.Logger), nil
}

// ProvideSRTCache provides the subtitle cache probe.
func ProvideSRTCache(i do.Injector) (*source.SRTCache, error) {
	p := do.MustInvoke[*parser.Parser](i)
	jsonCache := do.MustInvoke[*source.JSONCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return source.NewSRTCache(p, jsonCache, log.Logger), nil
}

// ProvideColdPath provides the transcription probe.
func ProvideColdPath(i do.Injector) (*source.ColdPath, error) {
	coord := do.MustInvoke[*transcribe.Coordinator](i)
	p := do.MustInvoke[*parser.Parser](i)
	jsonCache := do.MustInvoke[*source.JSONCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return source.NewColdPath(coord, p, jsonCache, log.Logger), nil
}

// ProvideSegmenter provides the segmenter backed by ffmpeg.
func ProvideSegmenter(i do.Injector) (*segmenter.Segmenter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return segmenter.New(segmenter.FFmpeg{}, segmenter.FFmpeg{}, log.Logger, cfg.Split.ExtractTitle), nil
}

// ProvideArchiver provides the done-directory archiver.
func ProvideArchiver(i do.Injector) (*segmenter.Archiver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return segmenter.NewArchiver(cfg.Paths.DoneDir, log.Logger), nil
}

// ProvideWalker provides the input directory walker.
func ProvideWalker(i do.Injector) (*scanner.Walker, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return scanner.NewWalker(log.Logger), nil
}

// ProvideWatcher provides the debounced file watcher. Only invoked in watch
// mode.
func ProvideWatcher(i do.Injector) (*watcher.Watcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return watcher.New(log.Logger, cfg.Watch.SettleDelay, scanner.IsAudioFile)
}

// ProvideLedger provides the SQLite run ledger. Only invoked when a ledger
// path is configured.
func ProvideLedger(i do.Injector) (*store.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.Open(cfg.Ledger.Path, log.Logger)
}

// ProvidePipeline provides the per-file orchestrator.
func ProvidePipeline(i do.Injector) (*pipeline.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	jsonCache := do.MustInvoke[*source.JSONCache](i)
	srtCache := do.MustInvoke[*source.SRTCache](i)
	coldPath := do.MustInvoke[*source.ColdPath](i)
	seg := do.MustInvoke[*segmenter.Segmenter](i)
	archiver := do.MustInvoke[*segmenter.Archiver](i)

	// A typed nil must not end up inside the interface; leave it absent.
	var ledger pipeline.Ledger
	if cfg.Ledger.Path != "" {
		ledger = do.MustInvoke[*store.Store](i)
	}

	return pipeline.New(cfg, log.Logger, pipeline.FFprobe{}, jsonCache, srtCache, coldPath, seg, archiver, ledger), nil
}
