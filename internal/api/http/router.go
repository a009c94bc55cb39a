package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authn := cfg.AuthMiddleware.Handle

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", authn, cfg.Users.Logout)
	authGroup.Get("/me", authn, cfg.Users.Me)

	users := app.Group("/users", authn)
	users.Get("/", cfg.Users.ListUsers)
	users.Get("/:id", cfg.Users.GetUser)

	tickets := app.Group("/tickets", authn)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", auth.RequireRole(domain.RoleOperationStaff, domain.RoleAdmin), cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", auth.RequireRole(domain.RoleHQ, domain.RoleAdmin), cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/comments", cfg.Comments.ListComments)
	tickets.Post("/:id/comments", cfg.Comments.AddComment)

	app.Get("/stats", authn, auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Stats)
}
