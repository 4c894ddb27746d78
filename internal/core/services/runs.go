package services

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// RunService reads the index run journal.
type RunService struct {
	runs driven.RunStore
}

// NewRunService creates a run service.
func NewRunService(runs driven.RunStore) *RunService {
	return &RunService{runs: runs}
}

// Recent returns the most recent runs, newest first.
func (s *RunService) Recent(ctx context.Context, limit int) ([]domain.IndexRun, error) {
	return s.runs.ListRuns(ctx, limit)
}
