// Package app wires the store, the model providers and the engine
// services together.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/evaluate"
	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/logger"
	"github.com/pathwise/pathwise/internal/progress"
	"github.com/pathwise/pathwise/internal/quiz"
	"github.com/pathwise/pathwise/internal/retrieval"
	"github.com/pathwise/pathwise/internal/store"
)

// Options configures the engine.
type Options struct {
	// DSN is the SQLite data source, a file path or a file: URI.
	DSN string

	LLM      llm.Config
	Content  content.Config
	Quiz     quiz.Config
	Evaluate evaluate.Config

	Logger *logger.Logger

	// Registerer receives the provider metrics. Nil uses a private
	// registry, reachable through App.Metrics.
	Registerer prometheus.Registerer

	// Mock serves the "mock" provider name.
	Mock *llm.MockProvider
}

// DefaultOptions returns options with every tunable at its default and
// the provider settings read from the environment.
func DefaultOptions(dsn string) Options {
	return Options{
		DSN:      dsn,
		LLM:      llm.ConfigFromEnv(),
		Content:  content.DefaultConfig(),
		Quiz:     quiz.DefaultConfig(),
		Evaluate: evaluate.DefaultConfig(),
	}
}

// App holds the engine services. Close releases the store.
type App struct {
	Store     *store.Store
	Providers *llm.Registry
	Quiz      *quiz.Generator
	Evaluator *evaluate.Evaluator
	Progress  *progress.Aggregator
	Log       *logger.Logger

	// Metrics is the private registry when Options.Registerer was nil.
	Metrics *prometheus.Registry
}

// New opens the store and builds every service. Providers are constructed
// lazily, so a missing API key only fails the requests that need it.
func New(opts Options) (*App, error) {
	log := logger.Or(opts.Logger)

	st, err := store.Open(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{Store: st, Log: log}

	reg := opts.Registerer
	if reg == nil {
		a.Metrics = prometheus.NewRegistry()
		reg = a.Metrics
	}

	a.Providers = llm.NewRegistry(opts.LLM, llm.RegistryOptions{
		EventRepo: st.EventRepo(),
		Metrics:   llm.NewMetrics(reg),
		Logger:    log.With("component", "llm"),
		Mock:      opts.Mock,
	})

	contents := st.ContentRepo()
	assembler := content.NewAssembler(
		retrieval.NewStoreRetriever(st.PassageRepo()),
		opts.Content,
		log.With("component", "content"),
	)

	a.Quiz = quiz.New(contents, assembler, a.Providers, opts.Quiz, log.With("component", "quiz"))
	a.Evaluator = evaluate.New(contents, assembler, a.Providers, opts.Evaluate, log.With("component", "evaluate"))
	a.Progress = progress.New(contents, st.ProgressRepo(), st.EnrollmentRepo(), progress.Options{
		Logger: log.With("component", "progress"),
	})

	if err := opts.LLM.Validate(); err != nil {
		log.Warn("default LLM provider not configured; AI features will fail until it is", "provider", opts.LLM.Provider, "error", err)
	}

	return a, nil
}

// Close closes the store.
func (a *App) Close() error {
	return a.Store.Close()
}
