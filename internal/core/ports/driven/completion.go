package driven

import (
	"context"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// CompletionGateway issues one chat completion round-trip.
// Transport failures are returned as *domain.TransportError and are never retried.
type CompletionGateway interface {
	// Complete sends the request and returns the first choice.
	Complete(ctx context.Context, req domain.CompletionRequest) (*domain.CompletionResponse, error)

	// ModelName returns the configured model.
	ModelName() string

	// Close releases resources.
	Close() error
}
