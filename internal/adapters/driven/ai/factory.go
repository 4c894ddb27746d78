// Package ai provides factory functions for creating the gateway adapters
// from application settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/wikiassist/internal/adapters/driven/completion/openai"
	"github.com/custodia-labs/wikiassist/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/wikiassist/internal/adapters/driven/vectorstore/chroma"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the gateways built from settings.
type InitResult struct {
	VectorStore      *chroma.Store
	EmbeddingService driven.EmbeddingService
	Completion       driven.CompletionGateway
	Warnings         []string // Non-fatal issues; the affected gateway is nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.Completion != nil {
		r.Completion.Close()
	}
}

// Init connects to the vector store and builds the embedding and
// completion gateways. Only the vector store is required; an unreachable
// embedding service or an unconfigured completion endpoint is reported as
// a warning.
func Init(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	store, err := CreateVectorStore(ctx, &settings.VectorStore)
	if err != nil {
		return nil, err
	}
	res := &InitResult{VectorStore: store}

	embedder, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
	} else {
		res.EmbeddingService = embedder
	}

	if gw := CreateCompletionGateway(&settings.Completion); gw != nil {
		res.Completion = gw
	} else {
		res.Warnings = append(res.Warnings, domain.ErrCompletionUnavailable.Error()+": set completion.endpoint")
	}
	return res, nil
}

// CreateVectorStore connects to Chroma and ensures the tenant and database exist.
func CreateVectorStore(ctx context.Context, settings *domain.VectorStoreSettings) (*chroma.Store, error) {
	store, err := chroma.New(ctx, chroma.Config{
		BaseURL:   settings.BaseURL(),
		Tenant:    settings.Tenant,
		Database:  settings.Database,
		Timeout:   settings.Timeout,
		RateLimit: settings.RateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to vector store at %s: %w", settings.BaseURL(), err)
	}
	return store, nil
}

// CreateEmbeddingService creates the Ollama embedding service.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	return ollama.NewEmbeddingService(ollama.Config{
		BaseURL:   settings.BaseURL(),
		Model:     settings.Model,
		Timeout:   settings.Timeout,
		KeepAlive: settings.KeepAlive,
	})
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc := CreateEmbeddingService(settings)
	if svc == nil {
		return nil, fmt.Errorf("%w: set embedding.host and embedding.model", domain.ErrEmbeddingUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateCompletionGateway creates the chat completion gateway.
// Returns nil if the endpoint is not configured.
func CreateCompletionGateway(settings *domain.CompletionSettings) driven.CompletionGateway {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	return openai.New(openai.Config{
		Endpoint: settings.Endpoint,
		APIKey:   settings.APIKey,
		Model:    settings.Model,
		Timeout:  settings.Timeout,
	})
}
