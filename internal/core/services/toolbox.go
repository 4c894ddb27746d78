package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// Tool names declared to the completion endpoint.
const (
	ToolGetDocument = "get_document"
	ToolGetTemplate = "get_template"
	ToolGetExamples = "get_examples"
)

// defaultToolExampleCount is used when get_examples is called without a count.
const defaultToolExampleCount = 5

// toolDefinitions returns the fixed tool set.
func toolDefinitions() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolGetDocument,
			Description: "Read the full text of a wiki page by its identifier, e.g. reports:mri:2024:g287-jane-doe.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{"type": "string", "description": "Page identifier"},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        ToolGetTemplate,
			Description: "Find the report template that best matches the current text or the given report type.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{"type": "string", "description": "Report type, e.g. mri"},
				},
			},
		},
		{
			Name:        ToolGetExamples,
			Description: "Fetch example reports similar to the current text.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"count": map[string]any{"type": "integer", "description": "Number of examples", "default": defaultToolExampleCount},
				},
			},
		},
	}
}

type getDocumentArgs struct {
	ID string `json:"id"`
}

type getTemplateArgs struct {
	Type string `json:"type"`
}

type getExamplesArgs struct {
	Count int `json:"count"`
}

// toolbox executes tool calls against the context service on behalf of
// the document being edited.
type toolbox struct {
	contexts driving.ContextService
	current  domain.DocumentID
	text     string
}

// call runs one tool. Failures are reported to the model as content
// rather than aborting the conversation.
func (t *toolbox) call(ctx context.Context, name string, args json.RawMessage) string {
	switch name {
	case ToolGetDocument:
		var a getDocumentArgs
		if err := decodeArgs(args, &a); err != nil {
			return toolError(err)
		}
		text, err := t.contexts.GetDocument(ctx, domain.DocumentID(strings.TrimSpace(a.ID)))
		if err != nil {
			return toolError(err)
		}
		return text

	case ToolGetTemplate:
		var a getTemplateArgs
		if err := decodeArgs(args, &a); err != nil {
			return toolError(err)
		}
		query := t.text
		if a.Type != "" {
			query = a.Type
		}
		ids := t.contexts.QueryTemplate(ctx, t.current, query)
		if len(ids) == 0 {
			return "no template found"
		}
		text, err := t.contexts.GetDocument(ctx, ids[0])
		if err != nil {
			return toolError(err)
		}
		return text

	case ToolGetExamples:
		var a getExamplesArgs
		if err := decodeArgs(args, &a); err != nil {
			return toolError(err)
		}
		if a.Count <= 0 {
			a.Count = defaultToolExampleCount
		}
		ids := t.contexts.QueryExamples(ctx, t.current, t.text, a.Count)
		out := t.contexts.BuildStaticContext(ctx, driving.ContextRequest{ExampleIDs: ids})
		if out == "" {
			return "no examples found"
		}
		return out

	default:
		return toolError(fmt.Errorf("unknown tool %q", name))
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func toolError(err error) string {
	return "error: " + err.Error()
}

// toolCacheKey hashes the tool name and its canonical arguments, so that
// key order and whitespace do not defeat the cache.
func toolCacheKey(name string, args json.RawMessage) string {
	canonical := []byte(args)
	var v any
	if err := json.Unmarshal(args, &v); err == nil {
		if b, err := json.Marshal(v); err == nil {
			canonical = b
		}
	}
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}
