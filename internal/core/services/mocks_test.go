package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	stdsync "sync"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// --- Shared mock implementations ---

type mockRecord struct {
	document string
	metadata map[string]any
}

// mockVectorStore is an in-memory driven.VectorStore.
type mockVectorStore struct {
	mu          stdsync.Mutex
	collections map[string]domain.Collection
	records     map[string]map[string]mockRecord

	createErr   error
	createAdds  bool
	getErr      error
	queryErr    error
	upsertErr   error
	createCalls int
	upsertCalls int
	getCalls    int
	queries     []domain.QueryRequest
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{
		collections: make(map[string]domain.Collection),
		records:     make(map[string]map[string]mockRecord),
	}
}

func (m *mockVectorStore) addCollection(name string) string {
	id := "col-" + name
	m.collections[name] = domain.Collection{ID: id, Name: name}
	m.records[id] = make(map[string]mockRecord)
	return id
}

func (m *mockVectorStore) put(collection, id, document string, metadata map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.collections[collection]
	if !ok {
		m.addCollection(collection)
		col = m.collections[collection]
	}
	m.records[col.ID][id] = mockRecord{document: document, metadata: metadata}
}

func (m *mockVectorStore) record(collection, id string) (mockRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.collections[collection]
	if !ok {
		return mockRecord{}, false
	}
	r, ok := m.records[col.ID][id]
	return r, ok
}

func (m *mockVectorStore) ListCollections(_ context.Context) ([]domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockVectorStore) GetCollectionByName(_ context.Context, name string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	return &c, nil
}

func (m *mockVectorStore) CreateCollection(_ context.Context, name string, _ map[string]any) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		if m.createAdds {
			m.addCollection(name)
		}
		return nil, m.createErr
	}
	m.addCollection(name)
	c := m.collections[name]
	return &c, nil
}

func (m *mockVectorStore) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	delete(m.records, c.ID)
	delete(m.collections, name)
	return nil
}

func (m *mockVectorStore) Upsert(_ context.Context, collectionID string, req domain.UpsertRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	recs, ok := m.records[collectionID]
	if !ok {
		return &domain.TransportError{Op: "upsert", StatusCode: 404}
	}
	for i, id := range req.IDs {
		recs[id] = mockRecord{document: req.Documents[i], metadata: req.Metadatas[i]}
	}
	return nil
}

// Query returns records in id order that match every where clause.
func (m *mockVectorStore) Query(_ context.Context, collectionID string, req domain.QueryRequest) (*domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, req)
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	recs := m.records[collectionID]
	ids := make([]string, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res := &domain.QueryResult{IDs: [][]string{{}}, Documents: [][]string{{}}, Metadatas: [][]map[string]any{{}}}
	for _, id := range ids {
		r := recs[id]
		if !matches(r.metadata, req.Where) {
			continue
		}
		if len(res.IDs[0]) >= req.NResults {
			break
		}
		res.IDs[0] = append(res.IDs[0], id)
		res.Documents[0] = append(res.Documents[0], r.document)
		res.Metadatas[0] = append(res.Metadatas[0], r.metadata)
	}
	return res, nil
}

func matches(md, where map[string]any) bool {
	for k, v := range where {
		if md[k] != v {
			return false
		}
	}
	return true
}

func (m *mockVectorStore) Get(_ context.Context, collectionID string, req domain.GetRequest) (*domain.GetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	res := &domain.GetResult{}
	for _, id := range req.IDs {
		if r, ok := m.records[collectionID][id]; ok {
			res.IDs = append(res.IDs, id)
			res.Documents = append(res.Documents, r.document)
			res.Metadatas = append(res.Metadatas, r.metadata)
		}
	}
	return res, nil
}

func (m *mockVectorStore) Heartbeat(_ context.Context) (int64, error) {
	return 42, nil
}

func (m *mockVectorStore) Identity(_ context.Context) (*domain.Identity, error) {
	return &domain.Identity{UserID: "u", Tenant: "default_tenant", Databases: []string{"default_database"}}, nil
}

// mockEmbedder returns a one-dimensional vector holding the text length.
type mockEmbedder struct {
	mu    stdsync.Mutex
	calls []string
	err   error
	errOn map[string]bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.err != nil || m.errOn[text] {
		return nil, fmt.Errorf("embedding failed: %w", domain.ErrEmbeddingUnavailable)
	}
	return []float32{float32(len(text))}, nil
}

func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error                 { return nil }

// scriptedCompletion replays responses in order and records every request.
type scriptedCompletion struct {
	responses []*domain.CompletionResponse
	errs      []error
	requests  []domain.CompletionRequest

	// repeat, when set, is returned once the script is exhausted.
	repeat *domain.CompletionResponse
}

func (s *scriptedCompletion) Complete(_ context.Context, req domain.CompletionRequest) (*domain.CompletionResponse, error) {
	// Copy messages so later appends by the caller do not alter the record.
	req.Messages = append([]domain.Message(nil), req.Messages...)
	req.Tools = append([]domain.ToolDefinition(nil), req.Tools...)
	s.requests = append(s.requests, req)

	n := len(s.requests) - 1
	if n < len(s.errs) && s.errs[n] != nil {
		return nil, s.errs[n]
	}
	if n < len(s.responses) {
		return s.responses[n], nil
	}
	if s.repeat != nil {
		return s.repeat, nil
	}
	return nil, fmt.Errorf("script exhausted after %d requests", len(s.requests))
}

func (s *scriptedCompletion) ModelName() string { return "scripted" }
func (s *scriptedCompletion) Close() error      { return nil }

// mockPromptStore serves prompts from a profile -> name -> text map.
type mockPromptStore struct {
	prompts map[string]map[string]string
	lookups []string
}

func (m *mockPromptStore) Get(profile, name string) (string, error) {
	m.lookups = append(m.lookups, profile+"/"+name)
	if p, ok := m.prompts[profile][name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %q in profile %q: %w", name, profile, domain.ErrPromptNotFound)
}

func (m *mockPromptStore) Reload() {}

func toolCall(id, name string, args any) domain.ToolCall {
	raw, _ := json.Marshal(args)
	return domain.ToolCall{ID: id, Name: name, Arguments: raw}
}
