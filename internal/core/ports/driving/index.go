package driving

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// IndexService writes pages into the vector store.
// Per-file failures are reported in the result, never returned as errors.
type IndexService interface {
	// ProcessSingleFile indexes one file into collection. When
	// collectionEnsured is false the collection is created if absent.
	// An empty collection is derived from the file's identifier.
	ProcessSingleFile(ctx context.Context, path, collection string, collectionEnsured bool) domain.IndexResult

	// ProcessDirectory indexes every eligible file below root.
	ProcessDirectory(ctx context.Context, root string) domain.IndexResult

	// Eligible reports whether a path would be picked up by directory processing.
	Eligible(path string) bool
}
