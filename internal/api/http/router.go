package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/complyhub/compliance-service/internal/api/http/handlers"
	"github.com/complyhub/compliance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Risks          *handlers.RisksHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The /auth group matches the refresh
// cookie path, so the cookie is never sent to resource endpoints.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)
	risks := api.Group("/risks")
	risks.Get("", cfg.Risks.List)
	risks.Post("", cfg.Risks.Create)
	risks.Get("/:id", cfg.Risks.Get)
	risks.Put("/:id", cfg.Risks.Update)
	risks.Patch("/:id", cfg.Risks.PartialUpdate)
	risks.Delete("/:id", cfg.Risks.Delete)
}
