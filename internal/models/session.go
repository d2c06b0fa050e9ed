package models

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRecord preserves an assistant tool request verbatim so the
// conversation can be replayed to the model on later turns.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatMessage is one entry in a session's conversation history.
// Turn groups the messages produced while handling a single user message,
// so truncation can drop whole exchanges instead of splitting one.
type ChatMessage struct {
	Role       Role             `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`   // assistant planning messages
	ToolCallID string           `json:"tool_call_id,omitempty"` // tool results
	ToolName   string           `json:"tool_name,omitempty"`    // tool results
	Turn       int              `json:"turn"`
	Timestamp  time.Time        `json:"timestamp"`
}

// SessionStats accumulates usage across the life of a session.
type SessionStats struct {
	TotalMessages    int     `json:"total_messages"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"total_cost_usd"`
	ToolsUsed        int     `json:"tools_used"`
	ElapsedSeconds   float64 `json:"total_elapsed_seconds"`
}

// Session holds per-conversation state. Sessions live in memory only;
// nothing here is persisted.
type Session struct {
	SessionID    string        `json:"session_id"`
	CustomerID   uint          `json:"customer_id,omitempty"` // 0 until a name is saved
	CustomerName string        `json:"customer_name,omitempty"`
	Messages     []ChatMessage `json:"messages"`
	Stats        SessionStats  `json:"stats"`
	NextTurn     int           `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
}
