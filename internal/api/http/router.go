package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/openticket/helpdesk/internal/api/http/handlers"
	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/observability"
	"github.com/openticket/helpdesk/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Gateway        *realtime.Gateway
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	token := app.Group("/api/token")
	token.Post("/", cfg.Auth.Obtain)
	token.Post("/refresh", cfg.Auth.Refresh)
	token.Post("/verify", cfg.Auth.Verify)

	v1 := app.Group("/api/v1")
	v1.Get("/health", cfg.Health.Health)
	v1.Get("/info", cfg.Health.Info)

	tickets := v1.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/:id<int>", cfg.Tickets.GetTicket)
	tickets.Put("/:id<int>", cfg.Tickets.ReplaceTicket)
	tickets.Patch("/:id<int>", cfg.Tickets.PatchTicket)
	tickets.Delete("/:id<int>", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id<int>/resolve", cfg.Tickets.ResolveTicket)

	notifications := v1.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireRoles(auth.AdminRoles))
	notifications.Post("/", cfg.Notifications.Send)

	if cfg.Gateway != nil {
		app.Get("/ws/tickets", realtime.RequireUpgrade, cfg.Gateway.Handler())
	}
}
