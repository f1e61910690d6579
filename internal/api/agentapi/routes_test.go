package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdowling/weathergate/internal/agent"
	"github.com/mdowling/weathergate/internal/llm"
)

type fixedOracle struct {
	completion llm.Completion
	err        error
}

func (o *fixedOracle) ChatCompletion(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (llm.Completion, error) {
	return o.completion, o.err
}

type noopTool struct{ calls int }

func (t *noopTool) CurrentWeather(ctx context.Context, location string) string {
	t.calls++
	return `{"error":"not used in these tests"}`
}

func buildApp(oracle agent.Oracle, tool agent.Tool) *agent.Agent {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return agent.New(oracle, tool, log)
}

func TestChatReturnsReply(t *testing.T) {
	oracle := &fixedOracle{completion: llm.Completion{
		FinishReason: "stop",
		Content:      "I'm specialized in weather information. I can tell you about current conditions for any location — just ask!",
		Message:      llm.Message{Role: llm.RoleAssistant},
	}}
	tool := &noopTool{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := New(buildApp(oracle, tool), "gpt-test", "http://localhost:8000", log)

	body := `{"message": "What's the capital of France?"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Contains(t, parsed.Reply, "specialized in weather information")
	assert.False(t, parsed.ToolUsed)
	assert.Zero(t, tool.calls)
}

func TestChatRejectsInvalidBody(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := New(buildApp(&fixedOracle{}, &noopTool{}), "gpt-test", "http://localhost:8000", log)

	cases := []string{
		`not json at all`,
		`{}`,
		`{"message": ""}`,
		`{"message": "hi", "history": [{"role": "wizard", "content": "x"}]}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)

		var parsed map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		assert.NotEmpty(t, parsed["error"])
	}
}

func TestChatOracleFailureReturns500(t *testing.T) {
	oracle := &fixedOracle{err: errors.New("connection refused")}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := New(buildApp(oracle, &noopTool{}), "gpt-test", "http://localhost:8000", log)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "weather in Austin"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var parsed map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, "The weather service is currently unavailable. Please try again.", parsed["error"])
	assert.NotContains(t, parsed["error"], "connection refused")
}

func TestHealthReportsModelAndProxy(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := New(buildApp(&fixedOracle{}, &noopTool{}), "gpt-test", "http://localhost:8000", log)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, "ok", parsed["status"])
	assert.Equal(t, "gpt-test", parsed["model"])
	assert.Equal(t, "http://localhost:8000", parsed["proxy_url"])
}
