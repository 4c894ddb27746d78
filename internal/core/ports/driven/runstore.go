package driven

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// RunStore journals directory indexing runs.
type RunStore interface {
	// SaveRun inserts or replaces a run record.
	SaveRun(ctx context.Context, run *domain.IndexRun) error

	// GetRun retrieves a run by id. Returns domain.ErrNotFound if absent.
	GetRun(ctx context.Context, id string) (*domain.IndexRun, error)

	// ListRuns returns the most recent runs first, at most limit.
	ListRuns(ctx context.Context, limit int) ([]domain.IndexRun, error)

	// Close releases resources.
	Close() error
}
