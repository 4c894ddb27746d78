package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// DefaultQueryLimit is used when a query asks for no particular number of results.
const DefaultQueryLimit = 5

// CollectionService exposes direct vector store operations.
type CollectionService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewCollectionService creates a collection service.
// The embedder is only needed for Query and may be nil.
func NewCollectionService(store driven.VectorStore, embedder driven.EmbeddingService) *CollectionService {
	return &CollectionService{store: store, embedder: embedder}
}

// Heartbeat returns the server heartbeat.
func (s *CollectionService) Heartbeat(ctx context.Context) (int64, error) {
	return s.store.Heartbeat(ctx)
}

// Identity returns the caller identity.
func (s *CollectionService) Identity(ctx context.Context) (*domain.Identity, error) {
	return s.store.Identity(ctx)
}

// List returns every collection.
func (s *CollectionService) List(ctx context.Context) ([]domain.Collection, error) {
	return s.store.ListCollections(ctx)
}

// Delete removes a collection by name.
func (s *CollectionService) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty collection name: %w", domain.ErrMalformedInput)
	}
	return s.store.DeleteCollection(ctx, name)
}

// Get fetches chunks by id. Ids without an "@n" suffix are expanded to the
// first chunk ordinals of that document.
func (s *CollectionService) Get(ctx context.Context, collection string, ids []string) (*domain.GetResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids: %w", domain.ErrMalformedInput)
	}
	col, err := s.store.GetCollectionByName(ctx, collection)
	if err != nil {
		return nil, err
	}

	var expanded []string
	for _, id := range ids {
		if strings.Contains(id, "@") {
			expanded = append(expanded, id)
			continue
		}
		for n := 1; n <= stalenessProbe; n++ {
			expanded = append(expanded, domain.ChunkID(domain.DocumentID(id), n))
		}
	}
	return s.store.Get(ctx, col.ID, domain.GetRequest{IDs: expanded})
}

// Query embeds text and returns the nearest chunks.
func (s *CollectionService) Query(ctx context.Context, collection, text string, limit int) (*domain.QueryResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrMalformedInput)
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	col, err := s.store.GetCollectionByName(ctx, collection)
	if err != nil {
		return nil, err
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.store.Query(ctx, col.ID, domain.QueryRequest{
		Embeddings: [][]float32{vec},
		NResults:   limit,
		Include:    []string{domain.IncludeDocuments, domain.IncludeMetadatas, domain.IncludeDistances},
	})
}
