package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/creatorhub/ticket-bot/internal/api/http/handlers"
	"github.com/creatorhub/ticket-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Ops            *handlers.OpsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.Token)

	ops := app.Group("/ops", cfg.AuthMiddleware.Handle)
	ops.Get("/state", cfg.Ops.State)
	ops.Get("/history", cfg.Ops.History)
}
