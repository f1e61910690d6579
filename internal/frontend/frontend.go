// Package frontend serves the chat UI: embedded static assets plus a tiny
// config endpoint telling the page where the agent lives. No business logic
// runs here.
package frontend

import (
	"embed"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

//go:embed static
var staticFS embed.FS

// New builds the frontend's Fiber app. agentURL is handed to the page via
// GET /config.js so the static assets stay environment-independent.
func New(agentURL string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weathergate-frontend",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weathergate-frontend",
		})
	})

	app.Get("/config.js", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/javascript")
		return c.SendString(fmt.Sprintf("window.AGENT_URL = %q;\n", agentURL))
	})

	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(staticFS),
		PathPrefix: "static",
		Index:      "index.html",
	}))

	return app
}
