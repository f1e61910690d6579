package llm

import "encoding/json"

// Chat roles used on the completions wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// FinishToolCalls is the finish_reason signalling a tool-call directive.
const FinishToolCalls = "tool_calls"

// Message is one chat message on the completions wire.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a structured directive emitted by the model naming a function
// and its arguments. It is untrusted input: the arguments string may be
// malformed JSON or name a tool we never offered.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a callable tool in the request's tools array.
type ToolDefinition struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// Completion is the tagged result of one chat call: either a tool-call
// directive (FinishReason == FinishToolCalls, ToolCalls non-empty) or plain
// assistant text.
type Completion struct {
	FinishReason string
	Content      string
	ToolCalls    []ToolCall
	// Raw assistant message, replayed verbatim into the follow-up round.
	Message Message
}

// chatRequest / chatResponse mirror the chat-completions wire format.
type chatRequest struct {
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Temperature float64          `json:"temperature"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int             `json:"index"`
		Message      Message         `json:"message"`
		FinishReason string          `json:"finish_reason"`
		LogProbs     json.RawMessage `json:"logprobs,omitempty"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
