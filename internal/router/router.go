package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/pantau-go-api/internal/config"
	"github.com/noah-isme/pantau-go-api/internal/handler"
	"github.com/noah-isme/pantau-go-api/internal/middleware"
	"github.com/noah-isme/pantau-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SnapshotHandler  *handler.SnapshotHandler
	AnalyticsHandler *handler.AnalyticsHandler
	ExportHandler    *handler.ExportHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.SnapshotHandler != nil {
		snapshots := api.Group("/snapshots")
		uploadLimiter := middleware.RateLimit("snapshot-upload", cfg.UploadRateLimit, cfg.UploadRateWindow)
		deps.SnapshotHandler.Register(snapshots, uploadLimiter)
	}

	if deps.AnalyticsHandler != nil {
		analyticsGroup := api.Group("/analytics")
		deps.AnalyticsHandler.Register(analyticsGroup)

		if deps.ExportHandler != nil {
			deps.ExportHandler.Register(analyticsGroup.Group("/export"))
		}
	}

	app.Get("/metrics", observability.MetricsHandler())
}
