// Package tui provides an interactive terminal browser for indexed wiki pages.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// DefaultLimit is the number of matches requested per query.
const DefaultLimit = 10

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Collection runs similarity queries. Required.
	Collection driving.CollectionService

	// Context loads full page text for the page view. Without it the page
	// view shows the matched chunk only.
	Context driving.ContextService

	// CollectionName is the collection queried.
	CollectionName string

	// Limit is the number of matches per query; zero means DefaultLimit.
	Limit int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Collection == nil {
		return ErrMissingCollectionService
	}
	if p.CollectionName == "" {
		return ErrMissingCollectionName
	}
	return nil
}

func (p *Ports) limit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	return p.Limit
}
