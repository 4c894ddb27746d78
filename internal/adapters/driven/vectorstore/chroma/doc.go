// Package chroma implements the VectorStore port against the Chroma v2 REST API.
//
// Every request is scoped to one tenant and database, both of which are
// created at construction when absent. Non-2xx responses and connection
// failures are returned as *domain.TransportError; nothing is retried.
package chroma
