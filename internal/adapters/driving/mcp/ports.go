package mcp

import (
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Context reads pages and finds templates, examples and snippets.
	Context driving.ContextService

	// Collection exposes the vector store. Optional.
	Collection driving.CollectionService

	// DefaultCollection is queried when a query names no collection.
	DefaultCollection string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Context == nil {
		return ErrMissingContextService
	}
	return nil
}
