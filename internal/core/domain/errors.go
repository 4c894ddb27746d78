package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Collections, tenants, databases and pages all report absence with it.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedInput indicates an unparseable identifier or path.
	ErrMalformedInput = errors.New("malformed input")

	// ErrCollectionNotFound indicates the target collection could not be resolved
	// after it was ensured.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrPromptNotFound indicates neither the requested profile nor the
	// default profile holds a prompt with the given name.
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrUnexpectedResponseFormat indicates a completion response carried
	// neither final content nor tool calls that could be honoured.
	ErrUnexpectedResponseFormat = errors.New("unexpected response format")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCompletionUnavailable indicates the completion endpoint is not configured.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrStale is used internally by the staleness check and never surfaced.
	ErrStale = errors.New("document is stale")
)

// TransportError is a network or HTTP-layer failure reported by a gateway.
// StatusCode is zero when the request never produced a response.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
