// Package openai provides a completion gateway for OpenAI-compatible
// /chat/completions endpoints, including tool calling.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

// Ensure Gateway implements the interface.
var _ driven.CompletionGateway = (*Gateway)(nil)

// Default configuration values.
const (
	DefaultEndpoint  = "https://api.openai.com/v1/chat/completions"
	DefaultModel     = "gpt-4o-mini"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024
)

// Config holds configuration for the completion gateway.
type Config struct {
	// Endpoint is the full chat completions URL.
	// Can be changed for Azure OpenAI, Ollama or other compatible APIs.
	Endpoint string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Gateway issues chat completion requests.
type Gateway struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

type chatRequest struct {
	Model       string     `json:"model"`
	Messages    []chatMsg  `json:"messages"`
	MaxTokens   int        `json:"max_tokens"`
	Stream      bool       `json:"stream"`
	Tools       []chatTool `json:"tools,omitempty"`
	ToolChoice  string     `json:"tool_choice,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
	TopP        *float64   `json:"top_p,omitempty"`
	TopK        *int       `json:"top_k,omitempty"`
	MinP        *float64   `json:"min_p,omitempty"`
}

type chatMsg struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   *string        `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates a new completion gateway.
func New(cfg Config) *Gateway {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Gateway{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
	}
}

// Complete sends one completion request and returns the first choice.
func (g *Gateway) Complete(ctx context.Context, in domain.CompletionRequest) (*domain.CompletionResponse, error) {
	reqBody := g.buildRequest(in)

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	if in.RequestID != "" {
		req.Header.Set("X-Request-ID", in.RequestID)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "completion", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: "completion", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.TransportError{
			Op:         "completion",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("openai error (status %d)", resp.StatusCode),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", domain.ErrUnexpectedResponseFormat)
	}
	if chatResp.Error != nil {
		return nil, &domain.TransportError{
			Op:         "completion",
			StatusCode: resp.StatusCode,
			Body:       chatResp.Error.Message,
			Err:        fmt.Errorf("openai error: %s", chatResp.Error.Message),
		}
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices returned: %w", domain.ErrUnexpectedResponseFormat)
	}

	msg := chatResp.Choices[0].Message
	out := &domain.CompletionResponse{}
	if msg.Content != nil {
		out.Content = *msg.Content
	}
	for _, tc := range msg.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(args),
		})
	}
	return out, nil
}

// buildRequest converts the domain request to the wire format.
// Sampling parameters are only sent when set.
func (g *Gateway) buildRequest(in domain.CompletionRequest) chatRequest {
	maxTokens := in.Params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	out := chatRequest{
		Model:       g.model,
		Messages:    make([]chatMsg, len(in.Messages)),
		MaxTokens:   maxTokens,
		Stream:      false,
		Temperature: in.Params.Temperature,
		TopP:        in.Params.TopP,
		TopK:        in.Params.TopK,
		MinP:        in.Params.MinP,
	}

	for i, m := range in.Messages {
		msg := chatMsg{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			wire := chatToolCall{ID: tc.ID, Type: "function"}
			wire.Function.Name = tc.Name
			wire.Function.Arguments = string(tc.Arguments)
			msg.ToolCalls = append(msg.ToolCalls, wire)
		}
		out.Messages[i] = msg
	}

	if len(in.Tools) > 0 {
		out.ToolChoice = "auto"
		for _, t := range in.Tools {
			out.Tools = append(out.Tools, chatTool{
				Type: "function",
				Function: chatFunction{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
	}
	return out
}

// ModelName returns the name of the model being used.
func (g *Gateway) ModelName() string {
	return g.model
}

// Close releases resources.
func (g *Gateway) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
