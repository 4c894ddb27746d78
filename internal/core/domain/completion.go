package domain

import "encoding/json"

// Message roles used in completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a chat completion conversation.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a model-issued request to run a declared tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolDefinition declares a tool to the model. Parameters is a JSON schema.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ModelParams carries optional sampling parameters. Nil fields are not sent.
type ModelParams struct {
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	TopK        *int
	MinP        *float64
}

// CompletionRequest is one round-trip to the completion endpoint.
type CompletionRequest struct {
	// RequestID is shared by every round-trip of one Process call.
	RequestID string
	Messages  []Message
	Tools     []ToolDefinition
	Params    ModelParams
}

// CompletionResponse is the first choice of a completion response.
type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the response asks for tool execution.
func (r CompletionResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
