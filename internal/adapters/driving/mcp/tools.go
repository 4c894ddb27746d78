package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// defaultLookupCount bounds example and snippet lookups when no count is given.
const defaultLookupCount = 5

// errCollectionUnavailable is returned by query when no collection port is wired.
var errCollectionUnavailable = errors.New("collection service not configured")

// DocumentInput is the input schema for the get_document tool.
type DocumentInput struct {
	ID string `json:"id" jsonschema:"the page identifier, segments joined by colons"`
}

// DocumentOutput is the output schema for the get_document tool.
type DocumentOutput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// LookupInput is the input schema for the lookup tools.
type LookupInput struct {
	Current string `json:"current,omitempty" jsonschema:"identifier of the page being edited, excluded from results"`
	Text    string `json:"text" jsonschema:"text used as the similarity query"`
	Count   int    `json:"count,omitempty" jsonschema:"maximum number of results (default 5)"`
}

// IDsOutput lists page identifiers.
type IDsOutput struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// SnippetsOutput lists snippet texts.
type SnippetsOutput struct {
	Snippets []string `json:"snippets"`
	Count    int      `json:"count"`
}

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Collection string `json:"collection,omitempty" jsonschema:"collection to query (default collection when empty)"`
	Text       string `json:"text" jsonschema:"the query text"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 5)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Results []QueryResultOutput `json:"results"`
	Count   int                 `json:"count"`
}

// QueryResultOutput represents a single query match.
type QueryResultOutput struct {
	ID       string         `json:"id"`
	Document string         `json:"document"`
	Distance float64        `json:"distance"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Read the full text of a wiki page by identifier",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_template",
		Description: "Find the template page closest to the given text",
	}, s.handleGetTemplate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_examples",
		Description: "Find report pages similar to the given text",
	}, s.handleGetExamples)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_snippets",
		Description: "Find paragraphs similar to the given text",
	}, s.handleSearchSnippets)

	if s.ports.Collection != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "query",
			Description: "Run a similarity query against a collection",
		}, s.handleQuery)
	}
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	content, err := s.ports.Context.GetDocument(ctx, domain.DocumentID(input.ID))
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, DocumentOutput{ID: input.ID, Content: content}, nil
}

func (s *Server) handleGetTemplate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, IDsOutput, error) {
	ids := s.ports.Context.QueryTemplate(ctx, domain.DocumentID(input.Current), input.Text)
	return nil, idsOutput(ids), nil
}

func (s *Server) handleGetExamples(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, IDsOutput, error) {
	ids := s.ports.Context.QueryExamples(ctx, domain.DocumentID(input.Current), input.Text, countOrDefault(input.Count))
	return nil, idsOutput(ids), nil
}

func (s *Server) handleSearchSnippets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, SnippetsOutput, error) {
	snippets := s.ports.Context.QuerySnippets(ctx, domain.DocumentID(input.Current), input.Text, countOrDefault(input.Count))
	if snippets == nil {
		snippets = []string{}
	}
	return nil, SnippetsOutput{Snippets: snippets, Count: len(snippets)}, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	if s.ports.Collection == nil {
		return nil, QueryOutput{}, errCollectionUnavailable
	}

	collection := input.Collection
	if collection == "" {
		collection = s.ports.DefaultCollection
	}

	res, err := s.ports.Collection.Query(ctx, collection, input.Text, input.Limit)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{Results: []QueryResultOutput{}}
	if len(res.IDs) == 0 {
		return nil, output, nil
	}

	for i, id := range res.IDs[0] {
		r := QueryResultOutput{ID: id}
		if len(res.Documents) > 0 && i < len(res.Documents[0]) {
			r.Document = res.Documents[0][i]
		}
		if len(res.Distances) > 0 && i < len(res.Distances[0]) {
			r.Distance = res.Distances[0][i]
		}
		if len(res.Metadatas) > 0 && i < len(res.Metadatas[0]) {
			r.Metadata = res.Metadatas[0][i]
		}
		output.Results = append(output.Results, r)
	}
	output.Count = len(output.Results)

	return nil, output, nil
}

func idsOutput(ids []domain.DocumentID) IDsOutput {
	out := IDsOutput{IDs: make([]string, len(ids)), Count: len(ids)}
	for i, id := range ids {
		out.IDs[i] = string(id)
	}
	return out
}

func countOrDefault(n int) int {
	if n <= 0 {
		return defaultLookupCount
	}
	return n
}
