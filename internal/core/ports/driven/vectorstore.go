package driven

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// VectorStore wraps collection management, upsert and similarity query
// against an external vector database scoped to one tenant and database.
//
// Every method reports transport failures as *domain.TransportError.
// Implementations never retry.
type VectorStore interface {
	// ListCollections returns every collection in the database.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// GetCollectionByName scans the listed collections for name.
	// Returns domain.ErrNotFound if absent.
	GetCollectionByName(ctx context.Context, name string) (*domain.Collection, error)

	// CreateCollection creates a collection. Metadata may be nil.
	CreateCollection(ctx context.Context, name string, metadata map[string]any) (*domain.Collection, error)

	// DeleteCollection removes a collection by name.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert writes records into the collection with the given id.
	Upsert(ctx context.Context, collectionID string, req domain.UpsertRequest) error

	// Query runs a nearest-neighbour query.
	Query(ctx context.Context, collectionID string, req domain.QueryRequest) (*domain.QueryResult, error)

	// Get fetches records by id.
	Get(ctx context.Context, collectionID string, req domain.GetRequest) (*domain.GetResult, error)

	// Heartbeat returns the server heartbeat in nanoseconds.
	Heartbeat(ctx context.Context) (int64, error)

	// Identity returns the caller identity.
	Identity(ctx context.Context) (*domain.Identity, error)
}
