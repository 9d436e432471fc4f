package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/resto-dashboard/internal/config"
	"github.com/noah-isme/resto-dashboard/internal/handler"
	"github.com/noah-isme/resto-dashboard/internal/middleware"
	"github.com/noah-isme/resto-dashboard/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	DashboardHandler *handler.DashboardHandler
	Sessions         middleware.SessionChecker
	// Metrics exposes /metrics when true.
	Metrics bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Sessions))

	if deps.Metrics {
		app.Get("/metrics", observability.MetricsHandler())
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(app)
	}

	// Dashboard routes need a live session; everything else is public.
	if deps.DashboardHandler != nil {
		gate := func(c *fiber.Ctx) error { return c.Next() }
		if deps.Sessions != nil {
			gate = middleware.RequireSession(deps.Sessions, middleware.GateOptions{})
		}
		dashboard := app.Group("/dashboard", gate)
		deps.DashboardHandler.Register(dashboard)
	}
}
