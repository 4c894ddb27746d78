package driving

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// RunService reads the index run journal.
type RunService interface {
	// Recent returns the most recent runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.IndexRun, error)
}
