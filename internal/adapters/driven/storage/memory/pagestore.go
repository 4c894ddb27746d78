package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

// Ensure PageStore implements the interface.
var _ driven.PageStore = (*PageStore)(nil)

type page struct {
	content string
	modTime time.Time
}

// PageStore is an in-memory implementation of driven.PageStore.
type PageStore struct {
	mu    sync.RWMutex
	pages map[domain.DocumentID]page
}

// NewPageStore creates a new in-memory page store.
func NewPageStore() *PageStore {
	return &PageStore{
		pages: make(map[domain.DocumentID]page),
	}
}

// Put stores or replaces a page.
func (s *PageStore) Put(id domain.DocumentID, content string, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = page{content: content, modTime: modTime}
}

// Read returns the raw text of a page.
func (s *PageStore) Read(_ context.Context, id domain.DocumentID) (string, error) {
	p, err := s.get(id)
	if err != nil {
		return "", err
	}
	return p.content, nil
}

// ModTime returns the last modification time of a page.
func (s *PageStore) ModTime(_ context.Context, id domain.DocumentID) (time.Time, error) {
	p, err := s.get(id)
	if err != nil {
		return time.Time{}, err
	}
	return p.modTime, nil
}

// Exists reports whether the page exists.
func (s *PageStore) Exists(_ context.Context, id domain.DocumentID) bool {
	_, err := s.get(id)
	return err == nil
}

func (s *PageStore) get(id domain.DocumentID) (page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[id]
	if !ok {
		return page{}, fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}
