package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

// Ensure runStore implements the interface.
var _ driven.RunStore = (*runStore)(nil)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

const runColumns = `id, root, collection, status, processed, skipped, failed, started_at, finished_at`

// SaveRun inserts or replaces a run record.
func (s *runStore) SaveRun(ctx context.Context, run *domain.IndexRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrMalformedInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			status = excluded.status,
			processed = excluded.processed,
			skipped = excluded.skipped,
			failed = excluded.failed,
			finished_at = excluded.finished_at
	`, run.ID, run.Root, run.Collection, string(run.Status),
		run.Processed, run.Skipped, run.Failed,
		formatNullableTime(run.StartedAt), formatNullableTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving index run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.IndexRun, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM index_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index run %s: %w", id, domain.ErrNotFound)
	}
	return run, err
}

// ListRuns returns the most recent runs first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.IndexRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM index_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IndexRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index runs: %w", err)
	}
	return runs, nil
}

// Close closes the underlying store.
func (s *runStore) Close() error {
	return s.store.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.IndexRun, error) {
	var run domain.IndexRun
	var status string
	var startedAt, finishedAt sql.NullString

	if err := row.Scan(&run.ID, &run.Root, &run.Collection, &status,
		&run.Processed, &run.Skipped, &run.Failed, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning index run: %w", err)
	}

	run.Status = domain.IndexStatus(status)
	run.StartedAt = parseNullableTime(startedAt)
	run.FinishedAt = parseNullableTime(finishedAt)
	return &run, nil
}
