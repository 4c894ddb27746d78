package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultTenant   = "default_tenant"
	DefaultDatabase = "default_database"
	DefaultTimeout  = 30 * time.Second
	apiPrefix       = "/api/v2"
)

// Config holds configuration for the Chroma client.
type Config struct {
	// BaseURL is the server root, without the API prefix.
	BaseURL  string
	Tenant   string
	Database string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Zero disables it.
	RateLimit float64
}

// Store is a Chroma REST client.
type Store struct {
	client   *http.Client
	baseURL  string
	tenant   string
	database string
	limiter  *RateLimiter
}

// New creates a client and ensures the configured tenant and database exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	s := newStore(cfg)
	if err := s.ensureTenant(ctx); err != nil {
		return nil, err
	}
	if err := s.ensureDatabase(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newStore(cfg Config) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Tenant == "" {
		cfg.Tenant = DefaultTenant
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL + apiPrefix,
		tenant:   cfg.Tenant,
		database: cfg.Database,
		limiter:  NewRateLimiter(cfg.RateLimit, 1),
	}
}

type collectionJSON struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type createCollectionRequest struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	IDs        []string         `json:"ids"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas,omitempty"`
	Embeddings [][]float32      `json:"embeddings,omitempty"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where,omitempty"`
	Include         []string       `json:"include,omitempty"`
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

type getRequest struct {
	IDs     []string `json:"ids"`
	Include []string `json:"include"`
	Limit   int      `json:"limit,omitempty"`
}

type getResponse struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

type heartbeatResponse struct {
	Nanoseconds int64 `json:"nanosecond heartbeat"`
}

type identityResponse struct {
	UserID    string   `json:"user_id"`
	Tenant    string   `json:"tenant"`
	Databases []string `json:"databases"`
}

// ListCollections returns every collection in the database.
func (s *Store) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var out []collectionJSON
	if err := s.do(ctx, "list collections", http.MethodGet, s.collectionsPath(), nil, &out); err != nil {
		return nil, err
	}
	cols := make([]domain.Collection, len(out))
	for i, c := range out {
		cols[i] = domain.Collection{ID: c.ID, Name: c.Name, Metadata: c.Metadata}
	}
	return cols, nil
}

// GetCollectionByName scans the listed collections for name.
func (s *Store) GetCollectionByName(ctx context.Context, name string) (*domain.Collection, error) {
	cols, err := s.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		if cols[i].Name == name {
			return &cols[i], nil
		}
	}
	return nil, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
}

// CreateCollection creates a collection.
func (s *Store) CreateCollection(ctx context.Context, name string, metadata map[string]any) (*domain.Collection, error) {
	var out collectionJSON
	body := createCollectionRequest{Name: name, Metadata: metadata}
	if err := s.do(ctx, "create collection", http.MethodPost, s.collectionsPath(), body, &out); err != nil {
		return nil, err
	}
	logger.Debug("chroma: created collection %s (%s)", out.Name, out.ID)
	return &domain.Collection{ID: out.ID, Name: out.Name, Metadata: out.Metadata}, nil
}

// DeleteCollection resolves name and deletes the collection by id.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	col, err := s.GetCollectionByName(ctx, name)
	if err != nil {
		return err
	}
	return s.do(ctx, "delete collection", http.MethodDelete, s.collectionPath(col.ID), nil, nil)
}

// Upsert writes records into a collection.
func (s *Store) Upsert(ctx context.Context, collectionID string, req domain.UpsertRequest) error {
	body := upsertRequest{
		IDs:        req.IDs,
		Documents:  req.Documents,
		Metadatas:  req.Metadatas,
		Embeddings: req.Embeddings,
	}
	return s.do(ctx, "upsert", http.MethodPost, s.collectionPath(collectionID)+"/upsert", body, nil)
}

// Query runs a nearest-neighbour query.
func (s *Store) Query(ctx context.Context, collectionID string, req domain.QueryRequest) (*domain.QueryResult, error) {
	body := queryRequest{
		QueryEmbeddings: req.Embeddings,
		NResults:        req.NResults,
		Where:           req.Where,
		Include:         req.Include,
	}
	var out queryResponse
	if err := s.do(ctx, "query", http.MethodPost, s.collectionPath(collectionID)+"/query", body, &out); err != nil {
		return nil, err
	}
	return &domain.QueryResult{
		IDs:       out.IDs,
		Documents: out.Documents,
		Metadatas: out.Metadatas,
		Distances: out.Distances,
	}, nil
}

// Get fetches records by id.
func (s *Store) Get(ctx context.Context, collectionID string, req domain.GetRequest) (*domain.GetResult, error) {
	include := req.Include
	if include == nil {
		include = []string{domain.IncludeDocuments, domain.IncludeMetadatas}
	}
	body := getRequest{IDs: req.IDs, Include: include, Limit: req.Limit}
	var out getResponse
	if err := s.do(ctx, "get", http.MethodPost, s.collectionPath(collectionID)+"/get", body, &out); err != nil {
		return nil, err
	}
	return &domain.GetResult{IDs: out.IDs, Documents: out.Documents, Metadatas: out.Metadatas}, nil
}

// Heartbeat returns the server heartbeat in nanoseconds.
func (s *Store) Heartbeat(ctx context.Context) (int64, error) {
	var out heartbeatResponse
	if err := s.do(ctx, "heartbeat", http.MethodGet, "/heartbeat", nil, &out); err != nil {
		return 0, err
	}
	return out.Nanoseconds, nil
}

// Identity returns the caller identity.
func (s *Store) Identity(ctx context.Context) (*domain.Identity, error) {
	var out identityResponse
	if err := s.do(ctx, "identity", http.MethodGet, "/identity", nil, &out); err != nil {
		return nil, err
	}
	return &domain.Identity{UserID: out.UserID, Tenant: out.Tenant, Databases: out.Databases}, nil
}

// Close releases resources.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Store) ensureTenant(ctx context.Context) error {
	path := "/tenants/" + url.PathEscape(s.tenant)
	if err := s.do(ctx, "get tenant", http.MethodGet, path, nil, nil); err == nil {
		return nil
	}
	logger.Info("chroma: creating tenant %s", s.tenant)
	return s.do(ctx, "create tenant", http.MethodPost, "/tenants", nameRequest{Name: s.tenant}, nil)
}

func (s *Store) ensureDatabase(ctx context.Context) error {
	base := "/tenants/" + url.PathEscape(s.tenant) + "/databases"
	if err := s.do(ctx, "get database", http.MethodGet, base+"/"+url.PathEscape(s.database), nil, nil); err == nil {
		return nil
	}
	logger.Info("chroma: creating database %s", s.database)
	return s.do(ctx, "create database", http.MethodPost, base, nameRequest{Name: s.database}, nil)
}

func (s *Store) collectionsPath() string {
	return "/tenants/" + url.PathEscape(s.tenant) +
		"/databases/" + url.PathEscape(s.database) + "/collections"
}

func (s *Store) collectionPath(id string) string {
	return s.collectionsPath() + "/" + url.PathEscape(id)
}

// do issues one JSON request. Any failure is returned as *domain.TransportError.
func (s *Store) do(ctx context.Context, op, method, path string, body, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &domain.TransportError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			s.limiter.RecordRateLimited(retryAfter(resp.Header.Get("Retry-After")))
		}
		return &domain.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}
