package mcp

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	content   string
	templates []domain.DocumentID
	examples  []domain.DocumentID
	snippets  []string
	err       error

	lastID    domain.DocumentID
	lastCount int
}

func (m *mockContextService) BuildStaticContext(_ context.Context, _ driving.ContextRequest) string {
	return ""
}

func (m *mockContextService) GetDocument(_ context.Context, id domain.DocumentID) (string, error) {
	m.lastID = id
	return m.content, m.err
}

func (m *mockContextService) QueryTemplate(_ context.Context, current domain.DocumentID, _ string) []domain.DocumentID {
	m.lastID = current
	return m.templates
}

func (m *mockContextService) QuerySnippets(_ context.Context, current domain.DocumentID, _ string, count int) []string {
	m.lastID = current
	m.lastCount = count
	return m.snippets
}

func (m *mockContextService) QueryExamples(_ context.Context, current domain.DocumentID, _ string, count int) []domain.DocumentID {
	m.lastID = current
	m.lastCount = count
	return m.examples
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	collections []domain.Collection
	result      *domain.QueryResult
	err         error

	lastCollection string
	lastLimit      int
}

func (m *mockCollectionService) Heartbeat(_ context.Context) (int64, error) {
	return 1, m.err
}

func (m *mockCollectionService) Identity(_ context.Context) (*domain.Identity, error) {
	return &domain.Identity{}, m.err
}

func (m *mockCollectionService) List(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCollectionService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCollectionService) Get(_ context.Context, _ string, _ []string) (*domain.GetResult, error) {
	return &domain.GetResult{}, m.err
}

func (m *mockCollectionService) Query(_ context.Context, collection, _ string, limit int) (*domain.QueryResult, error) {
	m.lastCollection = collection
	m.lastLimit = limit
	return m.result, m.err
}
