// Package agentapi exposes the tool-calling agent over HTTP: a blocking
// POST /chat and an SSE POST /chat/stream that reports progress stages before
// the final reply.
package agentapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/valyala/fasthttp"

	"github.com/mdowling/weathergate/internal/agent"
)

var validate = validator.New()

// streamTimeout caps one streamed chat end to end: two oracle rounds plus one
// proxy call.
const streamTimeout = 60 * time.Second

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message string                 `json:"message" validate:"required,min=1"`
	History []agent.HistoryMessage `json:"history" validate:"omitempty,dive"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Reply    string `json:"reply"`
	ToolUsed bool   `json:"tool_used"`
}

// New builds the agent's Fiber app.
func New(ag *agent.Agent, model, proxyURL string, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weathergate-agent",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          streamTimeout + 10*time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	// The chat UI is served from a different port.
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"model":     model,
			"proxy_url": proxyURL,
		})
	})

	app.Post("/chat", func(c *fiber.Ctx) error {
		req, err := parseChatRequest(c)
		if err != nil {
			return err
		}

		log.Info("incoming chat", "history_turns", len(req.History))

		ctx, cancel := context.WithTimeout(c.UserContext(), streamTimeout)
		defer cancel()

		reply, toolUsed, err := ag.Run(ctx, req.Message, req.History)
		if err != nil {
			// Detail is already logged inside the agent; callers get a
			// short summary only.
			log.Error("chat failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, chatErrorMessage(err))
		}

		return c.JSON(ChatResponse{Reply: reply, ToolUsed: toolUsed})
	})

	app.Post("/chat/stream", func(c *fiber.Ctx) error {
		req, err := parseChatRequest(c)
		if err != nil {
			return err
		}

		log.Info("incoming chat stream", "history_turns", len(req.History))

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		// The stream writer runs after this handler returns, so it gets
		// its own bounded context instead of the request's.
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
			defer cancel()

			emit := func(ev agent.StreamEvent) error {
				data, err := json.Marshal(ev)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
					return err
				}
				return w.Flush()
			}

			if err := ag.RunStream(ctx, req.Message, req.History, emit); err != nil {
				log.Warn("chat stream aborted", "error", err)
			}
		}))
		return nil
	})

	return app
}

func parseChatRequest(c *fiber.Ctx) (ChatRequest, error) {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}
	if err := validate.Struct(req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}
	return req, nil
}

func chatErrorMessage(err error) string {
	switch {
	case errors.Is(err, agent.ErrOracleUnavailable):
		return "The weather service is currently unavailable. Please try again."
	case errors.Is(err, agent.ErrEmptyReply):
		return "The model returned an empty response. Please try again."
	default:
		return "An unexpected error occurred."
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "An unexpected error occurred."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
