// Package llm is a minimal chat-completions client for Azure OpenAI
// deployments. The model is treated as a non-deterministic oracle: the client
// only moves messages and tool schemas across the wire, it never interprets
// replies.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one Azure OpenAI chat deployment.
type Client struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	apiVersion  string
	deployment  string
	temperature float64
}

// Config carries the oracle connection settings, read once at startup.
type Config struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
	Timeout    time.Duration
}

// NewClient builds a Client. Temperature is fixed low so tool-call decisions
// stay reproducible.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:      &http.Client{Timeout: timeout},
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		apiVersion:  cfg.APIVersion,
		deployment:  cfg.Deployment,
		temperature: 0.2,
	}
}

// Deployment returns the configured model deployment name.
func (c *Client) Deployment() string { return c.deployment }

// ChatCompletion sends one chat round. tools may be nil for the follow-up
// round that composes the final answer.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, tools []ToolDefinition) (Completion, error) {
	if c.endpoint == "" || c.deployment == "" {
		return Completion{}, fmt.Errorf("llm: endpoint or deployment not configured")
	}

	body, err := json.Marshal(chatRequest{
		Messages:    messages,
		Tools:       tools,
		Temperature: c.temperature,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("llm: encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(c.deployment), url.QueryEscape(c.apiVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("llm: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("llm: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Completion{}, fmt.Errorf("llm: endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Completion{}, fmt.Errorf("llm: decoding response: %w", err)
	}
	if parsed.Error != nil {
		return Completion{}, fmt.Errorf("llm: endpoint error %s: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Completion{}, fmt.Errorf("llm: response contained no choices")
	}

	choice := parsed.Choices[0]
	return Completion{
		FinishReason: choice.FinishReason,
		Content:      choice.Message.Content,
		ToolCalls:    choice.Message.ToolCalls,
		Message:      choice.Message,
	}, nil
}
