package driving

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// CollectionService exposes direct vector store operations to the CLI.
type CollectionService interface {
	// Heartbeat returns the server heartbeat.
	Heartbeat(ctx context.Context) (int64, error)

	// Identity returns the caller identity.
	Identity(ctx context.Context) (*domain.Identity, error)

	// List returns every collection.
	List(ctx context.Context) ([]domain.Collection, error)

	// Delete removes a collection by name.
	Delete(ctx context.Context, name string) error

	// Get fetches chunks by id from the named collection.
	Get(ctx context.Context, collection string, ids []string) (*domain.GetResult, error)

	// Query embeds text and returns the nearest chunks from the named collection.
	Query(ctx context.Context, collection, text string, limit int) (*domain.QueryResult, error)
}
