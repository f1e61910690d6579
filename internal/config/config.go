package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is the immutable process-wide configuration. It is built once at
// startup and passed explicitly to the components that need it; secrets are
// never logged and never appear in any response.
type AppConfig struct {
	// Weatherstack upstream. The credential is consumed only by the proxy's
	// upstream client.
	WeatherstackAPIKey  string
	WeatherstackBaseURL string

	// Azure OpenAI oracle.
	LLMEndpoint   string
	LLMAPIKey     string
	LLMAPIVersion string
	LLMDeployment string

	// ProxyURL is where the agent reaches the weather proxy.
	ProxyURL string

	// Listen ports for the three apps.
	ProxyPort    string
	AgentPort    string
	FrontendPort string

	// HTTPTimeout bounds every outbound call (proxy->upstream, agent->proxy,
	// agent->oracle). A timeout is treated the same as a network failure.
	HTTPTimeout time.Duration

	// HealthInterval controls how often the launcher probes each app.
	HealthInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherstackAPIKey = os.Getenv("WEATHERSTACK_API_KEY")
	cfg.WeatherstackBaseURL = getenvDefault("WEATHERSTACK_BASE_URL", "http://api.weatherstack.com")

	cfg.LLMEndpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
	cfg.LLMAPIKey = os.Getenv("AZURE_OPENAI_API_KEY")
	cfg.LLMAPIVersion = getenvDefault("AZURE_OPENAI_API_VERSION", "2025-01-01-preview")
	cfg.LLMDeployment = os.Getenv("AZURE_OPENAI_DEPLOYMENT")

	cfg.ProxyPort = getenvDefault("PROXY_PORT", "8000")
	cfg.AgentPort = getenvDefault("AGENT_PORT", "8001")
	cfg.FrontendPort = getenvDefault("FRONTEND_PORT", "8501")
	cfg.ProxyURL = getenvDefault("PROXY_URL", "http://localhost:"+cfg.ProxyPort)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	healthStr := getenvDefault("HEALTH_INTERVAL", "30s")
	healthInterval, err := time.ParseDuration(healthStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_INTERVAL: %w", err)
	}
	cfg.HealthInterval = healthInterval

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
