// Package agent implements the tool-calling loop: one oracle round with the
// weather tool schema, an optional proxy call when the oracle issues a
// directive, and a second oracle round to compose the final answer. The
// oracle's output is a tagged variant — a tool-call directive or direct text —
// and directives are validated before anything acts on them.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mdowling/weathergate/internal/llm"
)

// Oracle is the external LLM, a non-deterministic black box.
type Oracle interface {
	ChatCompletion(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (llm.Completion, error)
}

// Tool fetches weather data for a validated location. The returned string is
// always JSON the oracle can interpret, even on failure.
type Tool interface {
	CurrentWeather(ctx context.Context, location string) string
}

var (
	// ErrOracleUnavailable wraps any failed oracle round.
	ErrOracleUnavailable = errors.New("model unavailable")
	// ErrEmptyReply covers an oracle round that produced no content.
	ErrEmptyReply = errors.New("model returned empty content")

	// errBadDirective marks a tool-call directive that failed validation.
	// It never leaves this package: callers see a user-facing message and
	// the proxy is never contacted.
	errBadDirective = errors.New("malformed tool directive")
)

const badDirectiveReply = "I encountered an issue parsing the request. Could you rephrase it?"

// HistoryMessage is one prior conversation turn supplied by the caller.
type HistoryMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// Agent wires the oracle and the weather tool together.
type Agent struct {
	oracle Oracle
	tool   Tool
	log    *slog.Logger
}

func New(oracle Oracle, tool Tool, log *slog.Logger) *Agent {
	return &Agent{oracle: oracle, tool: tool, log: log}
}

// Run answers one user message. The boolean reports whether the weather tool
// was invoked.
func (a *Agent) Run(ctx context.Context, message string, history []HistoryMessage) (string, bool, error) {
	reply, toolUsed, err := a.run(ctx, message, history, nil)
	if errors.Is(err, errBadDirective) {
		return badDirectiveReply, false, nil
	}
	return reply, toolUsed, err
}

// StreamEvent is one server-sent event of a streaming chat.
type StreamEvent struct {
	Type     string `json:"type"` // "status", "result" or "error"
	Message  string `json:"message,omitempty"`
	Reply    string `json:"reply,omitempty"`
	ToolUsed *bool  `json:"tool_used,omitempty"`
}

// RunStream answers one user message, emitting progress events followed by
// exactly one result or error event. The returned error is non-nil only when
// emit itself fails (e.g. the client went away).
func (a *Agent) RunStream(ctx context.Context, message string, history []HistoryMessage, emit func(StreamEvent) error) error {
	notifyErr := error(nil)
	notify := func(stage string) {
		if notifyErr == nil {
			notifyErr = emit(StreamEvent{Type: "status", Message: stage})
		}
	}

	reply, toolUsed, err := a.run(ctx, message, history, notify)
	if notifyErr != nil {
		return notifyErr
	}
	if err != nil {
		return emit(StreamEvent{Type: "error", Message: streamErrorMessage(err)})
	}
	return emit(StreamEvent{Type: "result", Reply: reply, ToolUsed: &toolUsed})
}

func streamErrorMessage(err error) string {
	switch {
	case errors.Is(err, errBadDirective):
		return badDirectiveReply
	case errors.Is(err, ErrOracleUnavailable):
		return "The weather service is currently unavailable. Please try again."
	case errors.Is(err, ErrEmptyReply):
		return "The model returned an empty response. Please try again."
	default:
		return "An unexpected error occurred."
	}
}

// run drives both rounds. notify, when non-nil, receives progress stages.
func (a *Agent) run(ctx context.Context, message string, history []HistoryMessage, notify func(string)) (string, bool, error) {
	runID := uuid.NewString()
	log := a.log.With("run_id", runID)
	log.Info("agent invoked", "history_turns", len(history))

	if notify != nil {
		notify("Analyzing your question...")
	}

	messages := a.buildMessages(message, history, log)

	completion, err := a.oracle.ChatCompletion(ctx, messages, toolList())
	if err != nil {
		log.Error("oracle round 1 failed", "error", err)
		return "", false, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	if completion.FinishReason != llm.FinishToolCalls || len(completion.ToolCalls) == 0 {
		// Direct text: an answer from prior context or the fixed
		// out-of-scope reply. The proxy is never contacted.
		if completion.Content == "" {
			log.Error("oracle returned empty content", "round", 1)
			return "", false, ErrEmptyReply
		}
		log.Info("agent reply", "tool_used", false)
		return trimReply(completion.Content), false, nil
	}

	call := completion.ToolCalls[0]
	if call.Function.Name != GetCurrentWeatherName {
		log.Error("oracle named unknown tool", "tool", call.Function.Name)
		return "", false, errBadDirective
	}

	location, err := parseToolArguments(call.Function.Arguments)
	if err != nil {
		log.Error("malformed tool arguments", "arguments", call.Function.Arguments, "error", err)
		return "", false, errBadDirective
	}

	if notify != nil {
		notify(fmt.Sprintf("Fetching weather data for %s...", location))
	}

	log.Info("tool invocation", "tool", GetCurrentWeatherName, "location", location)
	result := a.tool.CurrentWeather(ctx, location)
	log.Info("tool result", "location", location, "bytes", len(result))

	messages = append(messages, completion.Message)
	messages = append(messages, llm.Message{
		Role:       llm.RoleTool,
		Content:    result,
		ToolCallID: call.ID,
	})

	if notify != nil {
		notify("Generating response...")
	}

	composed, err := a.oracle.ChatCompletion(ctx, messages, nil)
	if err != nil {
		log.Error("oracle round 2 failed", "error", err)
		return "", false, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if composed.Content == "" {
		log.Error("oracle returned empty content", "round", 2)
		return "", false, ErrEmptyReply
	}

	log.Info("agent reply", "tool_used", true)
	return trimReply(composed.Content), true, nil
}

// buildMessages assembles system prompt + sanitized history + user message.
// System entries in caller-supplied history are dropped: the prompt is ours,
// not the caller's.
func (a *Agent) buildMessages(message string, history []HistoryMessage, log *slog.Logger) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, h := range history {
		if h.Role != llm.RoleUser && h.Role != llm.RoleAssistant {
			log.Warn("dropping history message with disallowed role", "role", h.Role)
			continue
		}
		messages = append(messages, llm.Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	return messages
}

func trimReply(s string) string {
	return strings.TrimSpace(s)
}
