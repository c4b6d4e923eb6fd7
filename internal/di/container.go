// Package di provides dependency injection configuration for the chaptersplit CLI.
package di

import (
	"github.com/samber/do/v2"
)

// NewContainer creates and configures the DI container with all providers.
// Construction is lazy: providers run on first invoke, so a batch run without
// the ledger or watch mode never builds them.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, ProvideConfig)
	do.Provide(injector, ProvideLogger)

	// Boundary detection
	do.Provide(injector, ProvideParser)

	// Transcription layer
	do.Provide(injector, ProvideRecognizer)
	do.Provide(injector, ProvideCoordinator)

	// Source chain probes (the embedded probe is built per file by the pipeline)
	do.Provide(injector, ProvideJSONCache)
	do.Provide(injector, ProvideSRTCache)
	do.Provide(injector, ProvideColdPath)

	// Output layer
	do.Provide(injector, ProvideSegmenter)
	do.Provide(injector, ProvideArchiver)

	// Discovery
	do.Provide(injector, ProvideWalker)
	do.Provide(injector, ProvideWatcher)

	// Ledger
	do.Provide(injector, ProvideLedger)

	// Orchestration
	do.Provide(injector, ProvidePipeline)

	return injector
}
