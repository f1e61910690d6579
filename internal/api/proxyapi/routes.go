// Package proxyapi exposes the normalizing weather proxy: a thin HTTP
// boundary that validates the location, calls the upstream provider with the
// server-held credential, and maps provider outcomes onto a fixed contract of
// 200/400/404/502 with JSON bodies.
package proxyapi

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mdowling/weathergate/internal/weather"
)

var validate = validator.New()

// weatherQuery holds the query parameters of GET /weather.
type weatherQuery struct {
	Location string `validate:"required"`
	Units    string `validate:"omitempty,oneof=f m s"`
}

// New builds the proxy's Fiber app around the given upstream provider.
// apiKeyConfigured is surfaced on /health so operators can spot a missing
// credential without the key itself ever leaving the process.
func New(provider weather.Provider, apiKeyConfigured bool, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weathergate-proxy",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":             "ok",
			"service":            "weathergate-proxy",
			"api_key_configured": apiKeyConfigured,
		})
	})

	app.Get("/weather", func(c *fiber.Ctx) error {
		q := weatherQuery{
			Location: strings.TrimSpace(c.Query("location")),
			Units:    c.Query("units"),
		}
		if err := validate.Struct(q); err != nil {
			log.Warn("rejected weather request", "reason", "invalid parameters")
			if q.Location == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Location query parameter is required.")
			}
			return fiber.NewError(fiber.StatusBadRequest, "Invalid units; expected one of: f, m, s.")
		}

		log.Info("weather request", "location", q.Location)

		report, err := provider.Current(c.UserContext(), weather.Query{
			Location: q.Location,
			Units:    weather.Units(q.Units),
		})
		if err != nil {
			if errors.Is(err, weather.ErrLocationNotFound) {
				log.Warn("location not found", "location", q.Location)
				return fiber.NewError(fiber.StatusNotFound, "Location not found")
			}
			// Anything else is the provider's failure, never the caller's.
			// The detail stays in the log; callers get a fixed message.
			log.Error("upstream failure", "location", q.Location, "error", err)
			return fiber.NewError(fiber.StatusBadGateway, "Upstream weather service unavailable")
		}

		return c.JSON(report)
	})

	return app
}

// errorHandler normalizes every error to {"error": "..."} so the proxy never
// emits a stack trace or a provider payload.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
