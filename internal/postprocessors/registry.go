package postprocessors

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

var (
	// ErrUnknownProcessor is returned when a pipeline names an unregistered processor.
	ErrUnknownProcessor = errors.New("unknown processor")

	// ErrUnknownConfigKey is returned when a [pipeline.<name>] table holds a
	// key the processor does not accept.
	ErrUnknownConfigKey = errors.New("unknown config key")
)

// BuilderFunc creates a PostProcessor from its [pipeline.<name>] table.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

type entry struct {
	keys  []string
	build BuilderFunc
}

// Registry maps processor names to their builders and accepted config keys.
type Registry struct {
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a processor. keys lists the config keys its builder
// understands; any other key is rejected by Build.
func (r *Registry) Register(name string, keys []string, build BuilderFunc) {
	r.entries[name] = entry{keys: slices.Clone(keys), build: build}
}

// Build validates cfg against the processor's accepted keys and builds it.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %s)", ErrUnknownProcessor, name, strings.Join(r.Names(), ", "))
	}

	var unknown []string
	for k := range cfg {
		if !slices.Contains(e.keys, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("processor %s: %w: %s", name, ErrUnknownConfigKey, strings.Join(unknown, ", "))
	}

	return e.build(cfg)
}

// Keys returns the config keys a processor accepts, or nil if unregistered.
func (r *Registry) Keys(name string) []string {
	return slices.Clone(r.entries[name].keys)
}

// Names returns the registered processor names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
