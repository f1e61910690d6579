package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		Endpoint:   srv.URL,
		APIKey:     "test-api-key",
		APIVersion: "2025-01-01-preview",
		Deployment: "gpt-test",
		Timeout:    2 * time.Second,
	})
}

func TestChatCompletionRequestShape(t *testing.T) {
	var (
		gotPath    string
		gotVersion string
		gotAPIKey  string
		gotBody    chatRequest
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVersion = r.URL.Query().Get("api-version")
		gotAPIKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "hello"},
			}},
		})
	})

	messages := []Message{
		{Role: RoleSystem, Content: "you are a weather assistant"},
		{Role: RoleUser, Content: "weather in Austin?"},
	}
	tools := []ToolDefinition{{
		Type:     "function",
		Function: FunctionDef{Name: "get_current_weather"},
	}}

	got, err := client.ChatCompletion(context.Background(), messages, tools)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "stop", got.FinishReason)

	assert.Equal(t, "/openai/deployments/gpt-test/chat/completions", gotPath)
	assert.Equal(t, "2025-01-01-preview", gotVersion)
	assert.Equal(t, "test-api-key", gotAPIKey)
	assert.Equal(t, messages, gotBody.Messages)
	require.Len(t, gotBody.Tools, 1)
	assert.Equal(t, "get_current_weather", gotBody.Tools[0].Function.Name)
	assert.InDelta(t, 0.2, gotBody.Temperature, 1e-9)
}

func TestChatCompletionParsesToolCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":   "call_abc",
						"type": "function",
						"function": map[string]any{
							"name":      "get_current_weather",
							"arguments": `{"location": "Austin"}`,
						},
					}},
				},
			}},
		})
	})

	got, err := client.ChatCompletion(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, FinishToolCalls, got.FinishReason)
	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, "call_abc", got.ToolCalls[0].ID)
	assert.Equal(t, "get_current_weather", got.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"location": "Austin"}`, got.ToolCalls[0].Function.Arguments)
}

func TestChatCompletionNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": "429", "message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	_, err := client.ChatCompletion(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatCompletionErrorPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "content_filter", "message": "blocked"},
		})
	})

	_, err := client.ChatCompletion(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content_filter")
}

func TestChatCompletionEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.ChatCompletion(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatCompletionUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.ChatCompletion(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
}
