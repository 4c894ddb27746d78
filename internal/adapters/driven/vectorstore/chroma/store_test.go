package chroma

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

const colsPath = "/api/v2/tenants/t1/databases/d1/collections"

type recorded struct {
	method string
	path   string
	body   map[string]any
}

// fakeChroma records requests and serves canned responses keyed by "METHOD path".
type fakeChroma struct {
	mu        sync.Mutex
	requests  []recorded
	responses map[string]func(w http.ResponseWriter)
}

func newFakeChroma() *fakeChroma {
	ok := func(w http.ResponseWriter) { w.WriteHeader(http.StatusOK) }
	return &fakeChroma{responses: map[string]func(http.ResponseWriter){
		"GET /api/v2/tenants/t1":              ok,
		"GET /api/v2/tenants/t1/databases/d1": ok,
	}}
}

func (f *fakeChroma) on(key string, status int, body any) {
	f.responses[key] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, body: body})
	handler, ok := f.responses[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	handler(w)
}

func (f *fakeChroma) last(method, path string) *recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].method == method && f.requests[i].path == path {
			return &f.requests[i]
		}
	}
	return nil
}

func newTestStore(t *testing.T, f *fakeChroma) *Store {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), Config{BaseURL: srv.URL, Tenant: "t1", Database: "d1"})
	require.NoError(t, err)
	return s
}

func TestNew_CreatesMissingTenantAndDatabase(t *testing.T) {
	f := &fakeChroma{responses: map[string]func(http.ResponseWriter){}}
	f.on("POST /api/v2/tenants", http.StatusOK, map[string]any{})
	f.on("POST /api/v2/tenants/t1/databases", http.StatusOK, map[string]any{})
	srv := httptest.NewServer(f)
	defer srv.Close()

	_, err := New(context.Background(), Config{BaseURL: srv.URL, Tenant: "t1", Database: "d1"})
	require.NoError(t, err)

	tenant := f.last(http.MethodPost, "/api/v2/tenants")
	require.NotNil(t, tenant)
	assert.Equal(t, "t1", tenant.body["name"])

	db := f.last(http.MethodPost, "/api/v2/tenants/t1/databases")
	require.NotNil(t, db)
	assert.Equal(t, "d1", db.body["name"])
}

func TestNew_TenantCreationFails(t *testing.T) {
	f := &fakeChroma{responses: map[string]func(http.ResponseWriter){}}
	f.on("POST /api/v2/tenants", http.StatusInternalServerError, map[string]any{"error": "nope"})
	srv := httptest.NewServer(f)
	defer srv.Close()

	_, err := New(context.Background(), Config{BaseURL: srv.URL, Tenant: "t1", Database: "d1"})
	require.Error(t, err)

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Contains(t, te.Body, "nope")
}

func TestGetCollectionByName(t *testing.T) {
	f := newFakeChroma()
	f.on("GET "+colsPath, http.StatusOK, []map[string]any{
		{"id": "c1", "name": "reports"},
		{"id": "c2", "name": "documents", "metadata": map[string]any{"k": "v"}},
	})
	s := newTestStore(t, f)

	col, err := s.GetCollectionByName(context.Background(), "documents")
	require.NoError(t, err)
	assert.Equal(t, "c2", col.ID)
	assert.Equal(t, "v", col.Metadata["k"])

	_, err = s.GetCollectionByName(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateCollection(t *testing.T) {
	f := newFakeChroma()
	f.on("POST "+colsPath, http.StatusOK, map[string]any{"id": "c9", "name": "reports"})
	s := newTestStore(t, f)

	col, err := s.CreateCollection(context.Background(), "reports", map[string]any{"source": "wiki"})
	require.NoError(t, err)
	assert.Equal(t, "c9", col.ID)

	req := f.last(http.MethodPost, colsPath)
	require.NotNil(t, req)
	assert.Equal(t, "reports", req.body["name"])
	assert.Equal(t, map[string]any{"source": "wiki"}, req.body["metadata"])
}

func TestDeleteCollection_ResolvesID(t *testing.T) {
	f := newFakeChroma()
	f.on("GET "+colsPath, http.StatusOK, []map[string]any{{"id": "c1", "name": "reports"}})
	f.on("DELETE "+colsPath+"/c1", http.StatusOK, nil)
	s := newTestStore(t, f)

	require.NoError(t, s.DeleteCollection(context.Background(), "reports"))
	assert.NotNil(t, f.last(http.MethodDelete, colsPath+"/c1"))
}

func TestUpsert_Body(t *testing.T) {
	f := newFakeChroma()
	f.on("POST "+colsPath+"/c1/upsert", http.StatusOK, map[string]any{})
	s := newTestStore(t, f)

	err := s.Upsert(context.Background(), "c1", domain.UpsertRequest{
		IDs:        []string{"a@1"},
		Documents:  []string{"body"},
		Metadatas:  []map[string]any{{"type": "report"}},
		Embeddings: [][]float32{{0.5, 1}},
	})
	require.NoError(t, err)

	req := f.last(http.MethodPost, colsPath+"/c1/upsert")
	require.NotNil(t, req)
	assert.Equal(t, []any{"a@1"}, req.body["ids"])
	assert.Equal(t, []any{"body"}, req.body["documents"])
	assert.Equal(t, []any{map[string]any{"type": "report"}}, req.body["metadatas"])
	assert.Equal(t, []any{[]any{0.5, float64(1)}}, req.body["embeddings"])
}

func TestQuery(t *testing.T) {
	f := newFakeChroma()
	f.on("POST "+colsPath+"/c1/query", http.StatusOK, map[string]any{
		"ids":       [][]string{{"a@2", "b@1"}},
		"documents": [][]string{{"one", "two"}},
		"metadatas": [][]map[string]any{{{"type": "template"}, {"type": "template"}}},
		"distances": [][]float64{{0.1, 0.2}},
	})
	s := newTestStore(t, f)

	res, err := s.Query(context.Background(), "c1", domain.QueryRequest{
		Embeddings: [][]float32{{1, 2}},
		NResults:   2,
		Where:      map[string]any{"type": "template"},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a@2", "b@1"}}, res.IDs)
	assert.Equal(t, "two", res.Documents[0][1])
	assert.InDelta(t, 0.2, res.Distances[0][1], 1e-9)

	req := f.last(http.MethodPost, colsPath+"/c1/query")
	require.NotNil(t, req)
	assert.Equal(t, float64(2), req.body["n_results"])
	assert.Equal(t, map[string]any{"type": "template"}, req.body["where"])
}

func TestGet_DefaultInclude(t *testing.T) {
	f := newFakeChroma()
	f.on("POST "+colsPath+"/c1/get", http.StatusOK, map[string]any{
		"ids":       []string{"a@1"},
		"documents": []string{"body"},
		"metadatas": []map[string]any{{"processed_at": "2024-01-01T00:00:00Z"}},
	})
	s := newTestStore(t, f)

	res, err := s.Get(context.Background(), "c1", domain.GetRequest{IDs: []string{"a@1", "a@2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@1"}, res.IDs)
	assert.Equal(t, "2024-01-01T00:00:00Z", res.Metadatas[0]["processed_at"])

	req := f.last(http.MethodPost, colsPath+"/c1/get")
	require.NotNil(t, req)
	assert.Equal(t, []any{"documents", "metadatas"}, req.body["include"])
	_, hasLimit := req.body["limit"]
	assert.False(t, hasLimit)
}

func TestHeartbeatAndIdentity(t *testing.T) {
	f := newFakeChroma()
	f.on("GET /api/v2/heartbeat", http.StatusOK, map[string]any{"nanosecond heartbeat": 1234})
	f.on("GET /api/v2/identity", http.StatusOK, map[string]any{
		"user_id": "u", "tenant": "t1", "databases": []string{"d1"},
	})
	s := newTestStore(t, f)

	hb, err := s.Heartbeat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1234), hb)

	id, err := s.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", id.Tenant)
	assert.Equal(t, []string{"d1"}, id.Databases)
}

func TestNon2xxIsTransportError(t *testing.T) {
	f := newFakeChroma()
	f.on("POST "+colsPath+"/c1/upsert", http.StatusUnprocessableEntity, map[string]any{"error": "bad dims"})
	s := newTestStore(t, f)

	err := s.Upsert(context.Background(), "c1", domain.UpsertRequest{IDs: []string{"x"}, Documents: []string{"y"}})

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "upsert", te.Op)
	assert.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
	assert.Contains(t, te.Body, "bad dims")
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	s := newStore(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := s.Heartbeat(context.Background())

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.StatusCode)
}
