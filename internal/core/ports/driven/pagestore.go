package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// PageStore reads raw page text by document identifier.
// Missing pages are reported as domain.ErrNotFound.
type PageStore interface {
	// Read returns the raw text of a page.
	Read(ctx context.Context, id domain.DocumentID) (string, error)

	// ModTime returns the last modification time of a page.
	ModTime(ctx context.Context, id domain.DocumentID) (time.Time, error)

	// Exists reports whether the page exists.
	Exists(ctx context.Context, id domain.DocumentID) bool
}
