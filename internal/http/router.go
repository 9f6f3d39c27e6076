package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sumbot/internal/config"
	"sumbot/internal/metrics"
	"sumbot/internal/services"
)

type Server struct {
	app    *fiber.App
	config *config.Config
	svc    services.SummarizeService
	logger *slog.Logger
}

func NewServer(cfg *config.Config, svc services.SummarizeService, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Uploaded documents can be large; the fiber default of 4MB is
		// too small for typical PDFs and slide decks.
		BodyLimit: 32 * 1024 * 1024,
	})

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		// Ensure a request ID exists
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if logger != nil {
			logger.Info("request",
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}

		return err
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/plain; version=0.0.4")
		return c.SendString(metrics.Export())
	})

	v1 := app.Group("/v1/summarize")
	v1.Post("/url", summarizeURLHandler(svc))
	v1.Post("/file", summarizeFileHandler(svc))
	v1.Post("/search", summarizeSearchHandler(svc))

	return &Server{app: app, config: cfg, svc: svc, logger: logger}
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}
