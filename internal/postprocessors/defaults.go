package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/postprocessors/chunker"
	"github.com/custodia-labs/wikiassist/internal/postprocessors/metadata"
)

// DefaultProcessors is the indexing pipeline order.
var DefaultProcessors = []string{"chunker", "metadata"}

// RegisterDefaults registers the paragraph chunker and the metadata tagger.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", []string{"min_tag_length"}, buildChunker)
	r.Register("metadata", nil, buildMetadata)
}

// BuildPipeline builds the named processors in order.
// cfgs may be nil or omit entries; missing configs use processor defaults.
// A pipeline must start with the chunker, the only processor that creates chunks.
func BuildPipeline(r *Registry, names []string, cfgs map[string]map[string]any) (*Pipeline, error) {
	if len(names) == 0 || names[0] != "chunker" {
		return nil, fmt.Errorf("pipeline %v must start with chunker", names)
	}

	p := NewPipeline()
	for _, name := range names {
		proc, err := r.Build(name, cfgs[name])
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

// buildChunker reads min_tag_length, the shortest title word kept as a tag.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if v, ok := cfg["min_tag_length"]; ok {
		n, ok := intValue(v)
		if !ok || n <= 0 {
			return nil, fmt.Errorf("chunker: min_tag_length must be a positive integer, got %v", v)
		}
		opts = append(opts, chunker.WithMinTagLength(n))
	}

	return chunker.New(opts...), nil
}

func buildMetadata(_ map[string]any) (driven.PostProcessor, error) {
	return metadata.New(), nil
}

// intValue accepts the integer shapes TOML and JSON decoding produce.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
