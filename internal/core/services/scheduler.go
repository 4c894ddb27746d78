package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
	"github.com/custodia-labs/wikiassist/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler rescans page roots at a fixed interval so that changes missed
// by the file watcher are eventually indexed. Unchanged pages are skipped
// by the staleness check, which keeps a sweep cheap.
type Scheduler struct {
	indexer  driving.IndexService
	roots    []string
	interval time.Duration

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	sweeping atomic.Bool
}

// NewScheduler creates a scheduler sweeping roots every interval.
func NewScheduler(indexer driving.IndexService, roots []string, interval time.Duration) *Scheduler {
	return &Scheduler{
		indexer:  indexer,
		roots:    roots,
		interval: interval,
	}
}

// Start runs a sweep immediately and then on every tick. It blocks until
// Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.trigger(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.release(stopCh)
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			select {
			case <-stopCh:
				return nil
			default:
			}
			s.trigger(ctx)
		}
	}
}

// Stop shuts the scheduler down and waits for a running sweep to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// release marks the scheduler idle after its context ended, unless Stop
// already did so for this run.
func (s *Scheduler) release(stopCh chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.stopCh == stopCh {
		s.running = false
		close(stopCh)
	}
}

// trigger starts a sweep unless the previous one is still running.
func (s *Scheduler) trigger(ctx context.Context) {
	if !s.sweeping.CompareAndSwap(false, true) {
		logger.Debug("scheduler: previous sweep still running, skipping tick")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sweeping.Store(false)
		s.RunOnce(ctx)
	}()
}

// RunOnce processes every root in order and returns one result per root.
func (s *Scheduler) RunOnce(ctx context.Context) []domain.IndexResult {
	results := make([]domain.IndexResult, 0, len(s.roots))
	for _, root := range s.roots {
		if ctx.Err() != nil {
			break
		}
		res := s.indexer.ProcessDirectory(ctx, root)
		if res.Status == domain.IndexError {
			logger.Warn("scheduler: %s: %s", root, res.Message)
		}
		results = append(results, res)
	}
	return results
}
