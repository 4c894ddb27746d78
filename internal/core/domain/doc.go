// Package domain defines the core business entities for wikiassist.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentID: A colon-joined page identifier and its parsed metadata
//   - Chunk: An indexable paragraph of a page
//   - Collection: A vector store collection
//   - CompletionRequest: One round-trip to the completion endpoint
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
