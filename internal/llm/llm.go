// Package llm abstracts chat-completion providers with tool calling.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Message roles mirror the chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a structured invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolSpec describes one tool offered to the model.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON schema
}

// StepRequest is one reasoning round: the conversation so far plus the tool set.
type StepRequest struct {
	Messages []Message
	Tools    []ToolSpec
}

// StepResult is the model's output for one round. A result with ToolCalls
// requires tool execution and another round; one without is the final answer.
type StepResult struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *Usage
}

// Usage carries token accounting when the provider reports it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client abstracts a tool-calling chat model.
type Client interface {
	Step(ctx context.Context, req StepRequest) (StepResult, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM not configured")

// PlaceholderClient is a stub used when no provider is wired; every step fails.
type PlaceholderClient struct{}

// Step returns ErrNotConfigured.
func (PlaceholderClient) Step(ctx context.Context, req StepRequest) (StepResult, error) {
	_ = ctx
	_ = req
	return StepResult{}, ErrNotConfigured
}
