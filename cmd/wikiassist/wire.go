package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/wikiassist/internal/adapters/driven/ai"
	"github.com/custodia-labs/wikiassist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/wikiassist/internal/adapters/driven/storage/pages"
	"github.com/custodia-labs/wikiassist/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/cli"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/services"
	"github.com/custodia-labs/wikiassist/internal/metrics"
	"github.com/custodia-labs/wikiassist/internal/postprocessors"
)

// buildServices wires the adapters selected by settings into the core services.
// An unreachable vector store is not fatal: the commands that need it report
// it, while prompts and the run journal stay usable.
func buildServices(ctx context.Context, opts cli.BuildOptions) (*cli.Services, error) {
	cfg, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(cfg)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.Override != nil {
		opts.Override(settings)
	}

	m := metrics.New()
	out := &cli.Services{
		Settings:  settingsService,
		Config:    cfg,
		AppConfig: settings,
		Metrics:   m,
	}

	journal, err := sqlite.NewStore(settings.Storage.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	runs := journal.RunStore()
	out.Runs = services.NewRunService(runs)

	prompts, err := file.NewPromptStore(settings.Storage.PromptsDir)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, settings.Pipeline.Processors, settings.Pipeline.ProcessorConfigs)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	gateways, err := ai.Init(ctx, settings)
	if err != nil {
		out.Warnings = append(out.Warnings, err.Error())
		gateways = &ai.InitResult{
			EmbeddingService: ai.CreateEmbeddingService(&settings.Embedding),
			Completion:       ai.CreateCompletionGateway(&settings.Completion),
		}
	}
	out.Warnings = append(out.Warnings, gateways.Warnings...)

	// A nil *chroma.Store must not become a non-nil interface.
	var store driven.VectorStore
	if gateways.VectorStore != nil {
		store = gateways.VectorStore
	}

	pageStore := pages.New(settings.Storage.PagesDir, pages.WithExtension(firstExtension(settings.Indexer)))

	if store != nil {
		out.Index = services.NewIndexer(store, gateways.EmbeddingService, pipeline, services.IndexerConfig{
			BasePrefix:        settings.Indexer.BasePrefix,
			Extensions:        settings.Indexer.Extensions,
			DefaultCollection: settings.VectorStore.Collection,
		}, services.WithRunStore(runs), services.WithIndexMetrics(m))
		out.Collection = services.NewCollectionService(store, gateways.EmbeddingService)
	}

	contexts := services.NewContextService(pageStore, store, gateways.EmbeddingService, settings.VectorStore.Collection)
	out.Context = contexts
	out.Assistant = services.NewAssistant(
		gateways.Completion,
		prompts,
		contexts,
		pageStore,
		settings.Assistant,
		settings.Completion.Params,
		services.WithAssistantMetrics(m),
	)

	out.Close = func() {
		gateways.Close()
		journal.Close()
	}
	return out, nil
}

// firstExtension is the extension used to map page ids back to files.
func firstExtension(s domain.IndexerSettings) string {
	if len(s.Extensions) == 0 {
		return ""
	}
	return s.Extensions[0]
}
