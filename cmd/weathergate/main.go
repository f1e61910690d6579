package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mdowling/weathergate/internal/agent"
	"github.com/mdowling/weathergate/internal/api/agentapi"
	"github.com/mdowling/weathergate/internal/api/proxyapi"
	"github.com/mdowling/weathergate/internal/config"
	"github.com/mdowling/weathergate/internal/frontend"
	"github.com/mdowling/weathergate/internal/health"
	"github.com/mdowling/weathergate/internal/llm"
	"github.com/mdowling/weathergate/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if cfg.WeatherstackAPIKey == "" {
		logger.Warn("WEATHERSTACK_API_KEY is not set; /weather will answer 502 until it is configured")
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Weather proxy: upstream provider + HTTP app. The upstream credential
	// stays inside the provider; no other component sees it.
	upstream := providers.NewWeatherstackProvider(httpClient, cfg.WeatherstackBaseURL, cfg.WeatherstackAPIKey)
	proxyApp := proxyapi.New(upstream, cfg.WeatherstackAPIKey != "", logger.With("app", "proxy"))

	// Agent: oracle client + proxy tool + HTTP app.
	oracle := llm.NewClient(llm.Config{
		Endpoint:   cfg.LLMEndpoint,
		APIKey:     cfg.LLMAPIKey,
		APIVersion: cfg.LLMAPIVersion,
		Deployment: cfg.LLMDeployment,
		Timeout:    cfg.HTTPTimeout,
	})
	tool := agent.NewProxyTool(cfg.ProxyURL, httpClient, logger.With("app", "agent"))
	ag := agent.New(oracle, tool, logger.With("app", "agent"))
	agentApp := agentapi.New(ag, cfg.LLMDeployment, cfg.ProxyURL, logger.With("app", "agent"))

	// Frontend: static chat UI pointed at the agent.
	agentURL := "http://localhost:" + cfg.AgentPort
	frontendApp := frontend.New(agentURL)

	apps := []struct {
		name string
		app  *fiber.App
		port string
	}{
		{"proxy", proxyApp, cfg.ProxyPort},
		{"agent", agentApp, cfg.AgentPort},
		{"frontend", frontendApp, cfg.FrontendPort},
	}

	for _, a := range apps {
		a := a
		go func() {
			logger.Info("listening", "app", a.name, "port", a.port)
			if err := a.app.Listen(":" + a.port); err != nil {
				logger.Error("server stopped", "app", a.name, "error", err)
			}
		}()
	}

	// Periodic health probe of all three apps.
	monitor := health.New([]health.Target{
		{Name: "proxy", URL: "http://localhost:" + cfg.ProxyPort + "/health"},
		{Name: "agent", URL: "http://localhost:" + cfg.AgentPort + "/health"},
		{Name: "frontend", URL: "http://localhost:" + cfg.FrontendPort + "/health"},
	}, cfg.HealthInterval, logger.With("app", "monitor"))
	if err := monitor.Start(); err != nil {
		log.Fatalf("failed to start health monitor: %v", err)
	}
	defer monitor.Stop()

	logger.Info("weathergate up",
		"frontend", "http://localhost:"+cfg.FrontendPort,
		"agent", agentURL,
		"proxy", cfg.ProxyURL,
	)

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, a := range apps {
		if err := a.app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("error during shutdown", "app", a.name, "error", err)
		}
	}
}
