// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Indexer is the only writer to the vector store. ContextService only
// reads, and Assistant runs the tool-calling completion loop on top of it.
package services
