package driving

import "context"

// Metadata keys understood by AssistantService.Process.
const (
	MetaDocumentID = "id"
	MetaTemplate   = "template"
	MetaExamples   = "examples"
	MetaPrevious   = "previous"
	MetaSnippets   = "snippets"
	MetaThink      = "think"
	MetaProfile    = "profile"
)

// AssistantService runs a prompt action through the completion endpoint,
// executing tool calls until the model produces final content.
type AssistantService interface {
	// Process runs action over text. Metadata carries the current page id
	// and static context inputs (template, comma-separated examples,
	// previous page, snippet count).
	Process(ctx context.Context, action, text string, metadata map[string]string) (string, error)
}
