// Package mcp provides an MCP (Model Context Protocol) server adapter for wikiassist.
// It exposes page retrieval and context lookups to external assistants.
package mcp

import "errors"

// ErrMissingContextService is returned when the context service is not provided.
var ErrMissingContextService = errors.New("mcp: context service is required")
