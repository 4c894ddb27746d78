package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
	"github.com/custodia-labs/wikiassist/internal/logger"
	"github.com/custodia-labs/wikiassist/internal/metrics"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// stalenessProbe is how many leading chunk ordinals are read to decide
// whether a document is up to date. Leading paragraphs may be titles and
// therefore absent from the store.
const stalenessProbe = 3

// IndexerConfig configures path handling for the Indexer.
type IndexerConfig struct {
	// BasePrefix is stripped from paths before they become identifiers.
	BasePrefix string

	// Extensions lists recognised content extensions.
	Extensions []string

	// DefaultCollection receives documents of the empty and playground namespaces.
	DefaultCollection string
}

// IndexerOption configures optional Indexer collaborators.
type IndexerOption func(*Indexer)

// WithRunStore journals directory runs.
func WithRunStore(runs driven.RunStore) IndexerOption {
	return func(i *Indexer) { i.runs = runs }
}

// WithIndexMetrics records indexing metrics.
func WithIndexMetrics(m *metrics.Metrics) IndexerOption {
	return func(i *Indexer) { i.metrics = m }
}

// WithIndexClock overrides the clock used for run timestamps.
func WithIndexClock(now func() time.Time) IndexerOption {
	return func(i *Indexer) { i.now = now }
}

// Indexer writes pages into the vector store. It is the only writer of
// chunk records; indexing of one document id is serialised.
type Indexer struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	pipeline driven.PostProcessorPipeline
	runs     driven.RunStore
	metrics  *metrics.Metrics

	settings          domain.IndexerSettings
	defaultCollection string
	locks             *keyedMutex
	now               func() time.Time
}

// NewIndexer creates an indexer.
func NewIndexer(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	cfg IndexerConfig,
	opts ...IndexerOption,
) *Indexer {
	i := &Indexer{
		store:             store,
		embedder:          embedder,
		pipeline:          pipeline,
		settings:          domain.IndexerSettings{BasePrefix: cfg.BasePrefix, Extensions: cfg.Extensions},
		defaultCollection: cfg.DefaultCollection,
		locks:             newKeyedMutex(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Eligible reports whether a path would be picked up by directory processing.
// Names starting with an underscore are drafts and are never indexed.
func (i *Indexer) Eligible(path string) bool {
	name := filepath.Base(path)
	return !strings.HasPrefix(name, "_") && i.settings.Recognised(name)
}

// ProcessSingleFile indexes one file. Failures are reported in the result.
func (i *Indexer) ProcessSingleFile(ctx context.Context, path, collection string, collectionEnsured bool) domain.IndexResult {
	start := time.Now()
	res := i.processFile(ctx, path, collection, collectionEnsured)
	i.metrics.RecordDocument(string(res.Status), res.Chunks, time.Since(start))

	switch res.Status {
	case domain.IndexError:
		logger.Warn("%s: %s", path, res.Message)
	case domain.IndexSkipped:
		logger.Debug("%s: skipped: %s", path, res.Message)
	default:
		logger.Debug("%s: indexed %d chunks into %s", res.DocumentID, res.Chunks, res.Collection)
	}
	return res
}

func (i *Indexer) processFile(ctx context.Context, path, collection string, collectionEnsured bool) domain.IndexResult {
	res := domain.IndexResult{Path: path, Collection: collection}

	id, err := domain.ParseIdentifier(path, i.settings.BasePrefix)
	if err != nil {
		return failed(res, err)
	}
	res.DocumentID = id
	if res.Collection == "" {
		res.Collection = domain.CollectionFor(id, i.defaultCollection)
	}

	unlock := i.locks.Lock(string(id))
	defer unlock()

	if !collectionEnsured {
		if err := i.ensureCollection(ctx, res.Collection); err != nil {
			return failed(res, err)
		}
	}

	col, err := i.store.GetCollectionByName(ctx, res.Collection)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%s: %w", res.Collection, domain.ErrCollectionNotFound)
		}
		return failed(res, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return failed(res, fmt.Errorf("stat: %w", err))
	}

	stale := i.checkFresh(ctx, col.ID, id, info.ModTime())
	if stale == nil {
		res.Status = domain.IndexSkipped
		res.Message = "up to date"
		return res
	}
	logger.Debug("%s: needs update: %v", id, stale)

	content, err := os.ReadFile(path)
	if err != nil {
		return failed(res, fmt.Errorf("read: %w", err))
	}

	doc := &domain.Document{
		ID:       id,
		Path:     path,
		Content:  string(content),
		ModTime:  info.ModTime(),
		Metadata: domain.ExtractMetadata(id),
	}
	chunks, err := i.pipeline.Process(ctx, doc)
	if err != nil {
		return failed(res, err)
	}
	if len(chunks) == 0 {
		res.Status = domain.IndexSkipped
		res.Message = "no content chunks"
		return res
	}

	req := domain.UpsertRequest{
		IDs:        make([]string, len(chunks)),
		Documents:  make([]string, len(chunks)),
		Metadatas:  make([]map[string]any, len(chunks)),
		Embeddings: make([][]float32, len(chunks)),
	}
	for n, c := range chunks {
		vec, err := i.embedder.Embed(ctx, c.Content)
		i.metrics.RecordEmbedding(err)
		if err != nil {
			return failed(res, fmt.Errorf("embed %s: %w", c.ID, err))
		}
		req.IDs[n] = c.ID
		req.Documents[n] = c.Content
		req.Metadatas[n] = c.Metadata
		req.Embeddings[n] = vec
	}

	if err := i.store.Upsert(ctx, col.ID, req); err != nil {
		return failed(res, err)
	}

	res.Status = domain.IndexSuccess
	res.Chunks = len(chunks)
	return res
}

// checkFresh returns nil when the stored chunks are at least as new as
// modTime. Any other outcome, including a failed lookup, means reprocess.
func (i *Indexer) checkFresh(ctx context.Context, collectionID string, id domain.DocumentID, modTime time.Time) error {
	ids := make([]string, stalenessProbe)
	for n := range ids {
		ids[n] = domain.ChunkID(id, n+1)
	}

	got, err := i.store.Get(ctx, collectionID, domain.GetRequest{
		IDs:     ids,
		Include: []string{domain.IncludeMetadatas},
	})
	if err != nil {
		return err
	}
	if len(got.IDs) == 0 {
		return fmt.Errorf("%w: no stored chunks", domain.ErrStale)
	}

	for n, chunkID := range got.IDs {
		var md map[string]any
		if n < len(got.Metadatas) {
			md = got.Metadatas[n]
		}
		raw, _ := md[domain.MetaProcessedAt].(string)
		if raw == "" {
			return fmt.Errorf("%w: %s has no %s", domain.ErrStale, chunkID, domain.MetaProcessedAt)
		}
		processedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrStale, chunkID, err)
		}
		if processedAt.Before(modTime) {
			return fmt.Errorf("%w: %s processed %s, modified %s", domain.ErrStale, chunkID, raw, modTime.UTC().Format(time.RFC3339Nano))
		}
	}
	return nil
}

// ensureCollection creates the collection unless it already exists.
// A create that loses a race to another writer counts as success.
func (i *Indexer) ensureCollection(ctx context.Context, name string) error {
	_, err := i.store.GetCollectionByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	logger.Info("Creating collection %s", name)
	_, err = i.store.CreateCollection(ctx, name, nil)
	if err == nil || isAlreadyExists(err) {
		return nil
	}
	return fmt.Errorf("create collection %s: %w", name, err)
}

func isAlreadyExists(err error) bool {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return true
	}
	var te *domain.TransportError
	return errors.As(err, &te) && te.StatusCode == 409
}

// ProcessDirectory indexes every eligible file below root, sequentially.
// The collection is derived from the first file and ensured once.
func (i *Indexer) ProcessDirectory(ctx context.Context, root string) domain.IndexResult {
	res := domain.IndexResult{Path: root}

	files, err := i.discover(root)
	if err != nil {
		return failed(res, err)
	}
	if len(files) == 0 {
		res.Status = domain.IndexSkipped
		res.Message = "no eligible files"
		return res
	}

	first, err := domain.ParseIdentifier(files[0], i.settings.BasePrefix)
	if err != nil {
		return failed(res, err)
	}
	res.Collection = domain.CollectionFor(first, i.defaultCollection)

	if err := i.ensureCollection(ctx, res.Collection); err != nil {
		return failed(res, err)
	}

	run := &domain.IndexRun{
		ID:         uuid.NewString(),
		Root:       root,
		Collection: res.Collection,
		Status:     domain.IndexRunning,
		StartedAt:  i.now(),
	}
	i.saveRun(ctx, run)

	logger.Section("Indexing " + root)
	for _, path := range files {
		if ctx.Err() != nil {
			res.Message = ctx.Err().Error()
			break
		}

		fr := i.ProcessSingleFile(ctx, path, res.Collection, true)
		res.Files = append(res.Files, fr)
		switch fr.Status {
		case domain.IndexSuccess:
			res.Processed++
			res.Chunks += fr.Chunks
		case domain.IndexSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
	}

	res.Status = domain.IndexSuccess
	if (res.Failed > 0 && res.Processed == 0 && res.Skipped == 0) || ctx.Err() != nil {
		res.Status = domain.IndexError
	}
	logger.Info("%s: %d indexed, %d skipped, %d failed", root, res.Processed, res.Skipped, res.Failed)

	run.Status = res.Status
	run.Processed = res.Processed
	run.Skipped = res.Skipped
	run.Failed = res.Failed
	run.FinishedAt = i.now()
	// The run may be cancelled; the journal write must still happen.
	i.saveRun(context.WithoutCancel(ctx), run)

	return res
}

// discover lists eligible files below root in lexical order.
// A root that is itself a file is returned alone if eligible.
func (i *Indexer) discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && i.Eligible(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

func (i *Indexer) saveRun(ctx context.Context, run *domain.IndexRun) {
	if i.runs == nil {
		return
	}
	if err := i.runs.SaveRun(ctx, run); err != nil {
		logger.Warn("journal run %s: %v", run.ID, err)
	}
}

func failed(res domain.IndexResult, err error) domain.IndexResult {
	res.Status = domain.IndexError
	res.Message = err.Error()
	return res
}
