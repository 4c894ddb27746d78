package tui

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// mockCollectionService implements driving.CollectionService for testing.
type mockCollectionService struct {
	result *domain.QueryResult
	err    error
	limit  int
}

func (m *mockCollectionService) Heartbeat(context.Context) (int64, error) { return 1, nil }

func (m *mockCollectionService) Identity(context.Context) (*domain.Identity, error) {
	return &domain.Identity{}, nil
}

func (m *mockCollectionService) List(context.Context) ([]domain.Collection, error) { return nil, nil }

func (m *mockCollectionService) Delete(context.Context, string) error { return nil }

func (m *mockCollectionService) Get(context.Context, string, []string) (*domain.GetResult, error) {
	return &domain.GetResult{}, nil
}

func (m *mockCollectionService) Query(_ context.Context, _, _ string, limit int) (*domain.QueryResult, error) {
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockContextService implements driving.ContextService for testing.
type mockContextService struct {
	pages map[domain.DocumentID]string
}

func (m *mockContextService) BuildStaticContext(context.Context, driving.ContextRequest) string {
	return ""
}

func (m *mockContextService) GetDocument(_ context.Context, id domain.DocumentID) (string, error) {
	page, ok := m.pages[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return page, nil
}

func (m *mockContextService) QueryTemplate(context.Context, domain.DocumentID, string) []domain.DocumentID {
	return nil
}

func (m *mockContextService) QuerySnippets(context.Context, domain.DocumentID, string, int) []string {
	return nil
}

func (m *mockContextService) QueryExamples(context.Context, domain.DocumentID, string, int) []domain.DocumentID {
	return nil
}
