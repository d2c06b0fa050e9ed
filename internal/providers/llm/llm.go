package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of the planning context sent to the model.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // assistant messages only
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool messages only
	Name       string     `json:"name,omitempty"`         // tool name on tool messages
}

// ToolCall is the model asking for one tool invocation. Arguments is the raw
// JSON argument object as produced by the model, validated downstream.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSpec declares one callable tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  ObjectSchema
}

// ObjectSchema is the argument schema of a tool. Arguments are always a flat
// JSON object of scalar fields.
type ObjectSchema struct {
	Properties map[string]ParamSchema
	Required   []string
}

// ParamSchema describes one tool argument.
type ParamSchema struct {
	Type        string // "string" | "number" | "integer" | "boolean"
	Description string
}

type Request struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Messages    []Message
	Tools       []ToolSpec
	// ForceText suppresses tool declarations entirely, guaranteeing a
	// plain text reply.
	ForceText bool
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one model turn: either a final text, or one or more tool calls
// (possibly alongside interim text).
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Close() error
}
