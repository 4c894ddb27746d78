package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleGetDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page content", func(t *testing.T) {
		contexts := &mockContextService{content: "== Title ==\n\nbody"}
		server := newTestServer(t, &Ports{Context: contexts})

		_, output, err := server.handleGetDocument(ctx, nil, DocumentInput{ID: "reports:mri:a"})

		require.NoError(t, err)
		assert.Equal(t, "reports:mri:a", output.ID)
		assert.Equal(t, "== Title ==\n\nbody", output.Content)
		assert.Equal(t, domain.DocumentID("reports:mri:a"), contexts.lastID)
	})

	t.Run("returns error on read failure", func(t *testing.T) {
		contexts := &mockContextService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Context: contexts})

		_, _, err := server.handleGetDocument(ctx, nil, DocumentInput{ID: "missing"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleGetTemplate(t *testing.T) {
	contexts := &mockContextService{templates: []domain.DocumentID{"templates:mri"}}
	server := newTestServer(t, &Ports{Context: contexts})

	_, output, err := server.handleGetTemplate(context.Background(), nil, LookupInput{Current: "reports:x", Text: "mri"})

	require.NoError(t, err)
	assert.Equal(t, []string{"templates:mri"}, output.IDs)
	assert.Equal(t, 1, output.Count)
	assert.Equal(t, domain.DocumentID("reports:x"), contexts.lastID)
}

func TestServer_handleGetExamples(t *testing.T) {
	ctx := context.Background()

	t.Run("default count", func(t *testing.T) {
		contexts := &mockContextService{examples: []domain.DocumentID{"reports:a", "reports:b"}}
		server := newTestServer(t, &Ports{Context: contexts})

		_, output, err := server.handleGetExamples(ctx, nil, LookupInput{Text: "knee"})

		require.NoError(t, err)
		assert.Equal(t, []string{"reports:a", "reports:b"}, output.IDs)
		assert.Equal(t, defaultLookupCount, contexts.lastCount)
	})

	t.Run("no matches yields empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Context: &mockContextService{}})

		_, output, err := server.handleGetExamples(ctx, nil, LookupInput{Text: "knee", Count: 2})

		require.NoError(t, err)
		assert.Empty(t, output.IDs)
		assert.NotNil(t, output.IDs)
	})
}

func TestServer_handleSearchSnippets(t *testing.T) {
	contexts := &mockContextService{snippets: []string{"first", "second"}}
	server := newTestServer(t, &Ports{Context: contexts})

	_, output, err := server.handleSearchSnippets(context.Background(), nil, LookupInput{Text: "knee", Count: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, output.Snippets)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, 2, contexts.lastCount)
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("maps results and defaults the collection", func(t *testing.T) {
		collections := &mockCollectionService{result: &domain.QueryResult{
			IDs:       [][]string{{"reports:a@2"}},
			Documents: [][]string{{"body"}},
			Metadatas: [][]map[string]any{{{"type": "report"}}},
			Distances: [][]float64{{0.25}},
		}}
		server := newTestServer(t, &Ports{
			Context:           &mockContextService{},
			Collection:        collections,
			DefaultCollection: "documents",
		})

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Text: "knee", Limit: 3})

		require.NoError(t, err)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "reports:a@2", output.Results[0].ID)
		assert.Equal(t, "body", output.Results[0].Document)
		assert.InDelta(t, 0.25, output.Results[0].Distance, 1e-9)
		assert.Equal(t, "report", output.Results[0].Metadata["type"])
		assert.Equal(t, "documents", collections.lastCollection)
		assert.Equal(t, 3, collections.lastLimit)
	})

	t.Run("empty result", func(t *testing.T) {
		collections := &mockCollectionService{result: &domain.QueryResult{}}
		server := newTestServer(t, &Ports{Context: &mockContextService{}, Collection: collections})

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Collection: "reports", Text: "knee"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, "reports", collections.lastCollection)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		collections := &mockCollectionService{err: errors.New("query failed")}
		server := newTestServer(t, &Ports{Context: &mockContextService{}, Collection: collections})

		_, _, err := server.handleQuery(ctx, nil, QueryInput{Text: "knee"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "query failed")
	})

	t.Run("no collection service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Context: &mockContextService{}})

		_, _, err := server.handleQuery(ctx, nil, QueryInput{Text: "knee"})

		assert.ErrorIs(t, err, errCollectionUnavailable)
	})
}
