// Package postprocessors chains the processors that turn a page into
// embeddable chunks.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// ErrForeignChunk is returned when a processor emits a chunk that does not
// belong to the page being indexed.
var ErrForeignChunk = errors.New("chunk does not belong to document")

// Pipeline runs processors in order over one page. The first processor
// receives no chunks and creates them; later ones annotate what they get.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline running processors in the order given.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process turns doc into chunks. Every chunk must carry doc's id and a
// chunk id of the form "<doc id>@<ordinal>", since staleness checks and
// deletions address chunks by that id.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk
	for _, proc := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		chunks, err = proc.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", proc.Name(), err)
		}
		if err := checkOwnership(doc.ID, chunks); err != nil {
			return nil, fmt.Errorf("processor %s: %w", proc.Name(), err)
		}
		logger.Debug("%s: %s produced %d chunks", doc.ID, proc.Name(), len(chunks))
	}

	return chunks, nil
}

func checkOwnership(id domain.DocumentID, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if c.DocumentID != id || c.ID != domain.ChunkID(id, c.Ordinal) {
			return fmt.Errorf("%w: %q in %s", ErrForeignChunk, c.ID, id)
		}
	}
	return nil
}

// Add appends a processor.
func (p *Pipeline) Add(proc driven.PostProcessor) {
	p.processors = append(p.processors, proc)
}

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
