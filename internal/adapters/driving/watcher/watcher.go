// Package watcher re-indexes pages as they change on disk.
// It watches a page tree with fsnotify and hands each settled write to the
// indexer, one file at a time per path.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
	"github.com/custodia-labs/wikiassist/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is indexed.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Run once the watcher has been closed.
var ErrClosed = errors.New("watcher: closed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithResultHandler receives every indexing result.
func WithResultHandler(fn func(domain.IndexResult)) Option {
	return func(w *Watcher) { w.onResult = fn }
}

// Watcher watches a directory tree and indexes changed pages.
type Watcher struct {
	root     string
	indexer  driving.IndexService
	debounce time.Duration
	onResult func(domain.IndexResult)

	mu      sync.Mutex
	closed  bool
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates a watcher for root.
func New(root string, indexer driving.IndexService, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		indexer:  indexer,
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. In-flight indexing finishes before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.mu.Unlock()

	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	logger.Info("watching %s", w.root)

	defer w.drain()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// Close stops pending timers. A running Run returns when its context ends.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	return nil
}

// handleEvent schedules eligible writes and follows new directories.
func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if isHidden(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		// Removed pages keep their records until the next explicit send.
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(fw, event.Name); err != nil {
				logger.Warn("watch %s: %v", event.Name, err)
			}
		}
		return
	}
	if !w.indexer.Eligible(event.Name) {
		return
	}
	w.schedule(ctx, event.Name)
}

// schedule (re)arms the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	// A timer that already fired is replaced rather than reset.
	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		res := w.indexer.ProcessSingleFile(ctx, path, "", false)
		if w.onResult != nil {
			w.onResult(res)
		}
	})
	w.pending[path] = t
}

// drain cancels pending timers and waits for those already running.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// addTree watches dir and every visible directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
