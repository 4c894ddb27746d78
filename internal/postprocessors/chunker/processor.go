// Package chunker provides a paragraph chunking processor.
//
// Paragraphs are separated by blank lines. A paragraph wrapped in "="
// runs (a wiki heading) is a title: it is not emitted as content, and its
// words become tags for the paragraphs that follow it.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// DefaultMinTagLength is the shortest word kept as a tag.
const DefaultMinTagLength = 4

var (
	paragraphSeparator = regexp.MustCompile(`\n\s*\n`)
	titlePattern       = regexp.MustCompile(`^=+.*=+$`)
	wordPattern        = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// Processor splits document content into paragraph chunks.
// It implements the PostProcessor interface.
type Processor struct {
	minTagLength int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMinTagLength sets the minimum word length for title tags.
func WithMinTagLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.minTagLength = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		minTagLength: DefaultMinTagLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Split breaks text into paragraphs. Ordinals are the 1-based paragraph
// index over all paragraphs, so dropped blank paragraphs and titles leave
// gaps. Blank paragraphs are not returned; titles are returned with Title
// set and their tags.
func (p *Processor) Split(text string) []domain.RawChunk {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	paragraphs := paragraphSeparator.Split(text, -1)

	out := make([]domain.RawChunk, 0, len(paragraphs))
	for i, para := range paragraphs {
		content := strings.TrimSpace(para)
		if content == "" {
			continue
		}
		raw := domain.RawChunk{Ordinal: i + 1, Content: content}
		if titlePattern.MatchString(content) {
			raw.Title = true
			raw.Tags = p.tags(content)
		}
		out = append(out, raw)
	}
	return out
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
//
// Tags carry forward from the most recent title that produced any. A title
// without qualifying words leaves the current tags in place.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	var (
		chunks []domain.Chunk
		tags   []string
	)
	for _, raw := range p.Split(doc.Content) {
		if raw.Title {
			if len(raw.Tags) > 0 {
				tags = raw.Tags
			}
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, raw.Ordinal),
			DocumentID: doc.ID,
			Content:    raw.Content,
			Ordinal:    raw.Ordinal,
			Tags:       append([]string(nil), tags...),
			Metadata:   make(map[string]any),
		})
	}

	return chunks, nil
}

// tags returns the lowercase, de-duplicated words of a title that are at
// least minTagLength characters long.
func (p *Processor) tags(title string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range wordPattern.FindAllString(title, -1) {
		w = strings.ToLower(w)
		if utf8.RuneCountInString(w) < p.minTagLength || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
