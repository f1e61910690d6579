package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mdowling/weathergate/internal/llm"
)

// GetCurrentWeatherName is the canonical name of the agent's single tool.
const GetCurrentWeatherName = "get_current_weather"

// getCurrentWeatherDefinition describes the weather tool to the oracle.
func getCurrentWeatherDefinition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.FunctionDef{
			Name:        GetCurrentWeatherName,
			Description: "Retrieves current weather for a location. Call for any weather-related query.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "City or location name",
					},
				},
				"required": []string{"location"},
			},
		},
	}
}

// toolList is the fixed tool schema sent on every first round.
func toolList() []llm.ToolDefinition {
	return []llm.ToolDefinition{getCurrentWeatherDefinition()}
}

// parseToolArguments validates an untrusted tool-call directive and extracts
// the location. The arguments are checked against the tool's own JSON schema
// before anything acts on them.
func parseToolArguments(arguments string) (string, error) {
	schemaLoader := gojsonschema.NewGoLoader(getCurrentWeatherDefinition().Function.Parameters)
	documentLoader := gojsonschema.NewStringLoader(arguments)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return "", fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return "", fmt.Errorf("arguments failed schema validation: %s", strings.Join(errs, ", "))
	}

	var args struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("decoding arguments: %w", err)
	}
	if strings.TrimSpace(args.Location) == "" {
		return "", errors.New("location must be a non-empty string")
	}
	return args.Location, nil
}

// ProxyTool executes get_current_weather against the weather proxy.
type ProxyTool struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func NewProxyTool(baseURL string, client *http.Client, log *slog.Logger) *ProxyTool {
	return &ProxyTool{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

// CurrentWeather calls the proxy and always returns a JSON string for the
// oracle to interpret — the proxy's 200 body verbatim, or {"error": ...} for
// every failure mode. It never returns an error: failures become data the
// oracle must relay to the user.
func (t *ProxyTool) CurrentWeather(ctx context.Context, location string) string {
	u := fmt.Sprintf("%s/weather?%s", t.baseURL, url.Values{"location": {location}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		t.log.Error("building proxy request", "location", location, "error", err)
		return toolError("Weather service is unreachable.")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			t.log.Error("proxy timeout", "location", location)
			return toolError("Weather service timed out.")
		}
		t.log.Error("proxy unreachable", "location", location, "error", err)
		return toolError("Weather service is unreachable.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.log.Error("reading proxy response", "location", location, "error", err)
		return toolError("Weather service is unreachable.")
	}

	if resp.StatusCode == http.StatusOK {
		return string(body)
	}

	if resp.StatusCode == http.StatusNotFound {
		t.log.Warn("proxy reported unknown location", "location", location)
		return toolError(fmt.Sprintf("Location '%s' was not found.", location))
	}

	// Forward the proxy's structured message, never its raw body.
	var proxyErr struct {
		Error string `json:"error"`
	}
	msg := "Unknown error from weather service."
	if json.Unmarshal(body, &proxyErr) == nil && proxyErr.Error != "" {
		msg = proxyErr.Error
	}
	t.log.Error("proxy error", "location", location, "status", resp.StatusCode, "message", msg)
	return toolError(msg)
}

func toolError(msg string) string {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return string(out)
}
