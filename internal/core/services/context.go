package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
	"github.com/custodia-labs/wikiassist/internal/logger"
)

// Ensure ContextService implements the interface.
var _ driving.ContextService = (*ContextService)(nil)

// exampleOverfetch widens example queries because several hits usually
// belong to the same report.
const exampleOverfetch = 4

// ContextService assembles prompt context from pages and vector store hits.
// It only reads; the Indexer is the sole writer.
type ContextService struct {
	pages             driven.PageStore
	store             driven.VectorStore
	embedder          driven.EmbeddingService
	defaultCollection string
}

// NewContextService creates a context service.
// The store and embedder may be nil, in which case queries return nothing.
func NewContextService(
	pages driven.PageStore,
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	defaultCollection string,
) *ContextService {
	return &ContextService{
		pages:             pages,
		store:             store,
		embedder:          embedder,
		defaultCollection: defaultCollection,
	}
}

// BuildStaticContext concatenates the template, the examples and the
// snippets in that order. Pages that cannot be read are left out.
func (s *ContextService) BuildStaticContext(ctx context.Context, req driving.ContextRequest) string {
	var parts []string

	if req.TemplateID != "" {
		if text, err := s.GetDocument(ctx, req.TemplateID); err == nil && text != "" {
			parts = append(parts, text)
		} else if err != nil {
			logger.Debug("context: template %s: %v", req.TemplateID, err)
		}
	}

	if examples := s.formatExamples(ctx, req.ExampleIDs); examples != "" {
		parts = append(parts, examples)
	}

	if snippets := FormatSnippets(req.Snippets); snippets != "" {
		parts = append(parts, snippets)
	}

	return strings.Join(parts, "\n\n")
}

// GetDocument returns the raw text of a page.
func (s *ContextService) GetDocument(ctx context.Context, id domain.DocumentID) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty document id: %w", domain.ErrMalformedInput)
	}
	return s.pages.Read(ctx, id)
}

// QueryTemplate returns the id of the template nearest to text, if any.
func (s *ContextService) QueryTemplate(ctx context.Context, current domain.DocumentID, text string) []domain.DocumentID {
	res := s.query(ctx, current, text, 1, map[string]any{"type": domain.DocTypeTemplate})
	if res == nil || len(res.IDs) == 0 || len(res.IDs[0]) == 0 {
		return nil
	}
	return []domain.DocumentID{domain.DocumentID(domain.StripChunkSuffix(res.IDs[0][0]))}
}

// QuerySnippets returns up to count chunk texts nearest to text.
func (s *ContextService) QuerySnippets(ctx context.Context, current domain.DocumentID, text string, count int) []string {
	if count <= 0 {
		return nil
	}
	res := s.query(ctx, current, text, count, nil)
	if res == nil || len(res.Documents) == 0 {
		return nil
	}
	var out []string
	for _, doc := range res.Documents[0] {
		if strings.TrimSpace(doc) != "" {
			out = append(out, doc)
		}
	}
	return out
}

// QueryExamples returns up to count distinct report ids nearest to text.
// The current document is never its own example.
func (s *ContextService) QueryExamples(ctx context.Context, current domain.DocumentID, text string, count int) []domain.DocumentID {
	if count <= 0 {
		return nil
	}
	res := s.query(ctx, current, text, count*exampleOverfetch, map[string]any{"type": domain.DocTypeReport})
	if res == nil || len(res.IDs) == 0 {
		return nil
	}

	seen := map[domain.DocumentID]bool{current: true}
	var out []domain.DocumentID
	for _, chunkID := range res.IDs[0] {
		id := domain.DocumentID(domain.StripChunkSuffix(chunkID))
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if len(out) == count {
			break
		}
	}
	return out
}

// query embeds text and queries the collection of the current document.
// Every failure is logged and yields nil.
func (s *ContextService) query(
	ctx context.Context, current domain.DocumentID, text string, n int, where map[string]any,
) *domain.QueryResult {
	if s.store == nil || s.embedder == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	name := domain.CollectionFor(current, s.defaultCollection)
	col, err := s.store.GetCollectionByName(ctx, name)
	if err != nil {
		logger.Debug("context: collection %s: %v", name, err)
		return nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Debug("context: embed query: %v", err)
		return nil
	}

	res, err := s.store.Query(ctx, col.ID, domain.QueryRequest{
		Embeddings: [][]float32{vec},
		NResults:   n,
		Where:      where,
	})
	if err != nil {
		logger.Debug("context: query %s: %v", name, err)
		return nil
	}
	return res
}

// formatExamples reads each example page and wraps it with its source id.
func (s *ContextService) formatExamples(ctx context.Context, ids []domain.DocumentID) string {
	var b strings.Builder
	for _, id := range ids {
		text, err := s.GetDocument(ctx, id)
		if err != nil {
			logger.Debug("context: example %s: %v", id, err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<example source=%q>\n%s\n</example>", string(id), text)
	}
	return b.String()
}

// FormatSnippets wraps each snippet in a sequence-numbered tag, starting at 1.
func FormatSnippets(snippets []string) string {
	var b strings.Builder
	for i, s := range snippets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<snippet n=\"%d\">\n%s\n</snippet>", i+1, s)
	}
	return b.String()
}
