package domain

import "time"

// IndexStatus is the outcome of indexing a file or a directory.
type IndexStatus string

// Index outcomes.
const (
	IndexSuccess IndexStatus = "success"
	IndexSkipped IndexStatus = "skipped"
	IndexError   IndexStatus = "error"

	// IndexRunning marks a journalled run that has not finished.
	IndexRunning IndexStatus = "running"
)

// IndexResult reports what happened to one file, or aggregates a batch.
type IndexResult struct {
	Status     IndexStatus
	Path       string
	DocumentID DocumentID
	Collection string
	Chunks     int
	Message    string

	// Batch aggregates, set by directory processing.
	Processed int
	Skipped   int
	Failed    int
	Files     []IndexResult
}

// IndexRun is a journal record of one directory indexing run.
type IndexRun struct {
	ID         string
	Root       string
	Collection string
	Status     IndexStatus
	Processed  int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}
