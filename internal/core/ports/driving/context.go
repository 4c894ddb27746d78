package driving

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// ContextRequest names the pages and snippets that make up a context block.
type ContextRequest struct {
	TemplateID domain.DocumentID
	ExampleIDs []domain.DocumentID
	Snippets   []string
}

// ContextService assembles prompt context. Query helpers are best-effort:
// gateway failures degrade to empty results.
type ContextService interface {
	// BuildStaticContext concatenates template, examples and snippets.
	// Unreadable pages are omitted; the result is empty when nothing is present.
	BuildStaticContext(ctx context.Context, req ContextRequest) string

	// GetDocument returns the raw text of a page.
	GetDocument(ctx context.Context, id domain.DocumentID) (string, error)

	// QueryTemplate returns at most one template id relevant to text,
	// searched in the collection of the current document.
	QueryTemplate(ctx context.Context, current domain.DocumentID, text string) []domain.DocumentID

	// QuerySnippets returns up to count chunk texts relevant to text.
	QuerySnippets(ctx context.Context, current domain.DocumentID, text string, count int) []string

	// QueryExamples returns up to count distinct report ids relevant to text.
	QueryExamples(ctx context.Context, current domain.DocumentID, text string, count int) []domain.DocumentID
}
