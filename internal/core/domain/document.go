package domain

import (
	"strconv"
	"strings"
	"time"
)

// Chunk metadata keys written alongside the parsed identifier metadata.
const (
	MetaChunkID     = "chunk_id"
	MetaChunkNumber = "chunk_number"
	MetaTotalChunks = "total_chunks"
	MetaTags        = "tags"
	MetaProcessedAt = "processed_at"
)

// Document is one source page read from the page store, ready for chunking.
type Document struct {
	// ID is the colon-joined document identifier.
	ID DocumentID

	// Path is the filesystem location the document was read from.
	Path string

	// Content is the raw page text.
	Content string

	// ModTime is the source modification time used for staleness checks.
	ModTime time.Time

	// Metadata is the metadata extracted from the identifier.
	Metadata DocumentMetadata
}

// RawChunk is one paragraph produced by the chunker before metadata is attached.
type RawChunk struct {
	// Ordinal is the 1-based paragraph index, counted over all paragraphs.
	Ordinal int

	// Content is the trimmed paragraph text.
	Content string

	// Title is true when the paragraph is a heading line.
	Title bool

	// Tags holds the tags derived from a title paragraph.
	Tags []string
}

// Chunk is an indexable unit of a document.
type Chunk struct {
	// ID is the document identifier plus "@" plus the ordinal.
	ID string

	// DocumentID links to the parent document.
	DocumentID DocumentID

	// Content is the text content of this chunk.
	Content string

	// Ordinal is the paragraph position within the document.
	Ordinal int

	// Tags are the tags of the most recent preceding title.
	Tags []string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Metadata is the flat metadata map stored with the chunk.
	Metadata map[string]any
}

// ChunkID returns the vector store id of the chunk at ordinal n.
func ChunkID(id DocumentID, n int) string {
	return string(id) + "@" + strconv.Itoa(n)
}

// StripChunkSuffix removes a trailing "@n" from a chunk id.
func StripChunkSuffix(chunkID string) string {
	if i := strings.LastIndex(chunkID, "@"); i >= 0 {
		return chunkID[:i]
	}
	return chunkID
}
