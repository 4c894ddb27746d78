package postprocessors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/postprocessors/chunker"
	"github.com/custodia-labs/wikiassist/internal/postprocessors/metadata"
)

const reportPage = "= Findings =\n\nNo acute abnormality.\n\n\n\nMild degenerative change.\n\n== Impression ==\n\nNormal study."

// stubProcessor returns fixed chunks or an error.
type stubProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
}

func (s *stubProcessor) Name() string { return s.name }

func (s *stubProcessor) Process(_ context.Context, _ *domain.Document, in []domain.Chunk) ([]domain.Chunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.chunks != nil {
		return s.chunks, nil
	}
	return in, nil
}

func reportDoc(content string) *domain.Document {
	id := domain.DocumentID("reports:mri:2024:g287-jane-doe")
	return &domain.Document{ID: id, Content: content, Metadata: domain.ExtractMetadata(id)}
}

func TestPipeline_ChunksAndTagsReportPage(t *testing.T) {
	fixed := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	p := NewPipeline(chunker.New(), metadata.New(metadata.WithClock(func() time.Time { return fixed })))

	chunks, err := p.Process(context.Background(), reportDoc(reportPage))
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	ids := []string{chunks[0].ID, chunks[1].ID, chunks[2].ID}
	assert.Equal(t, []string{
		"reports:mri:2024:g287-jane-doe@2",
		"reports:mri:2024:g287-jane-doe@3",
		"reports:mri:2024:g287-jane-doe@5",
	}, ids)
	assert.Equal(t, "Mild degenerative change.", chunks[1].Content)

	first := chunks[0].Metadata
	assert.Equal(t, "report", first["type"])
	assert.Equal(t, "mri", first["modality"])
	assert.Equal(t, "2024", first["year"])
	assert.Equal(t, domain.UnknownInstitution, first["institution"])
	assert.Equal(t, "g287", first["registration"])
	assert.Equal(t, "findings", first[domain.MetaTags])
	assert.Equal(t, 3, first[domain.MetaTotalChunks])
	assert.Equal(t, "2024-05-02T08:30:00Z", first[domain.MetaProcessedAt])

	last := chunks[2].Metadata
	assert.Equal(t, 5, last[domain.MetaChunkNumber])
	assert.Equal(t, "impression", last[domain.MetaTags])
}

func TestPipeline_EmptyPageHasNoChunks(t *testing.T) {
	p := NewPipeline(chunker.New(), metadata.New())

	chunks, err := p.Process(context.Background(), reportDoc("  \n\n  "))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestPipeline_NilDocument(t *testing.T) {
	_, err := NewPipeline(chunker.New()).Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestPipeline_RejectsForeignChunk(t *testing.T) {
	doc := reportDoc(reportPage)
	stray := &stubProcessor{name: "stray", chunks: []domain.Chunk{
		{ID: "templates:mri:head@1", DocumentID: "templates:mri:head", Ordinal: 1},
	}}

	_, err := NewPipeline(chunker.New(), stray).Process(context.Background(), doc)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForeignChunk))
	assert.Contains(t, err.Error(), "processor stray")
}

func TestPipeline_RejectsMismatchedOrdinal(t *testing.T) {
	doc := reportDoc(reportPage)
	renumber := &stubProcessor{name: "renumber", chunks: []domain.Chunk{
		{ID: domain.ChunkID(doc.ID, 1), DocumentID: doc.ID, Ordinal: 2},
	}}

	_, err := NewPipeline(renumber).Process(context.Background(), doc)
	assert.True(t, errors.Is(err, ErrForeignChunk))
}

func TestPipeline_ProcessorErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewPipeline(chunker.New(), &stubProcessor{name: "tagger", err: boom}).
		Process(context.Background(), reportDoc(reportPage))

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "processor tagger")
}

func TestPipeline_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(chunker.New(), metadata.New()).Process(ctx, reportDoc(reportPage))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPipeline_Names(t *testing.T) {
	p := NewPipeline(chunker.New())
	p.Add(metadata.New())

	assert.Equal(t, []string{"chunker", "metadata"}, p.Names())
}
