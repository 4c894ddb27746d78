// Package metadata provides the processor that attaches identifier metadata
// and per-chunk bookkeeping fields to chunks before they are embedded.
package metadata

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// Processor copies the document metadata onto every chunk and adds
// chunk_id, chunk_number, total_chunks, tags and processed_at.
// It implements the PostProcessor interface.
type Processor struct {
	now func() time.Time
}

// Option configures the metadata processor.
type Option func(*Processor)

// WithClock overrides the clock used for processed_at.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a new metadata processor.
func New(opts ...Option) *Processor {
	p := &Processor{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "metadata"
}

// Process annotates chunks in place and returns them.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	processedAt := p.now().UTC().Format(time.RFC3339Nano)
	base := doc.Metadata.Map()

	for i := range chunks {
		md := make(map[string]any, len(base)+5)
		for k, v := range base {
			md[k] = v
		}
		for k, v := range chunks[i].Metadata {
			md[k] = v
		}
		md[domain.MetaChunkID] = chunks[i].ID
		md[domain.MetaChunkNumber] = chunks[i].Ordinal
		md[domain.MetaTotalChunks] = len(chunks)
		md[domain.MetaProcessedAt] = processedAt
		if len(chunks[i].Tags) > 0 {
			md[domain.MetaTags] = strings.Join(chunks[i].Tags, ",")
		}
		chunks[i].Metadata = md
	}

	return chunks, nil
}
