// Package pages reads wiki pages from a directory tree. The identifier
// reports:mri:2024:g287 maps to <root>/reports/mri/2024/g287.txt.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.PageStore = (*Store)(nil)

// DefaultExtension is appended to the last identifier segment.
const DefaultExtension = ".txt"

// Store is a filesystem-backed page store.
type Store struct {
	root string
	ext  string
}

// Option configures a Store.
type Option func(*Store)

// WithExtension sets the page file extension.
func WithExtension(ext string) Option {
	return func(s *Store) {
		if ext != "" {
			s.ext = ext
		}
	}
}

// New creates a page store rooted at root.
func New(root string, opts ...Option) *Store {
	s := &Store{root: root, ext: DefaultExtension}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the page directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the file path of the page with the given identifier.
func (s *Store) Path(id domain.DocumentID) (string, error) {
	segments := id.Segments()
	if len(segments) == 0 {
		return "", fmt.Errorf("page %q: %w", id, domain.ErrMalformedInput)
	}
	for _, seg := range segments {
		if seg == "." || seg == ".." || filepath.Base(seg) != seg {
			return "", fmt.Errorf("page %q: %w", id, domain.ErrMalformedInput)
		}
	}
	parts := append([]string{s.root}, segments...)
	return filepath.Join(parts...) + s.ext, nil
}

// Read returns the raw text of a page.
func (s *Store) Read(_ context.Context, id domain.DocumentID) (string, error) {
	path, err := s.Path(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", notFound(id, err)
	}
	return string(data), nil
}

// ModTime returns the last modification time of a page.
func (s *Store) ModTime(_ context.Context, id domain.DocumentID) (time.Time, error) {
	path, err := s.Path(id)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, notFound(id, err)
	}
	return info.ModTime(), nil
}

// Exists reports whether the page exists.
func (s *Store) Exists(ctx context.Context, id domain.DocumentID) bool {
	_, err := s.ModTime(ctx, id)
	return err == nil
}

func notFound(id domain.DocumentID, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("page %s: %w", id, err)
}
