package http

import (
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/artem13815/resumeparser/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, health *handlers.HealthHandler, resumes *handlers.ResumesHandler, uploadDir string) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	api.Post("/upload", resumes.Upload)
	api.Get("/resumes", resumes.List)
	api.Get("/resumes/:id", resumes.Get)

	// Stored originals
	app.Static("/uploads", uploadDir)

	app.Get("/swagger/*", swagger.HandlerDefault)
}
