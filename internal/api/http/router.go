package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	SLA            *handlers.SLAHandler
	Approvals      *handlers.ApprovalsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/password/change", cfg.Users.ChangePassword)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/breaches/idle", cfg.SLA.IdleBreaches)
	tickets.Get("/breaches/sla", cfg.SLA.SlaBreaches)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/assign", cfg.Tickets.AssignTicket)
	tickets.Post("/:id/transfer", cfg.Tickets.TransferTicket)
	tickets.Post("/:id/cancel", cfg.Tickets.CancelTicket)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)

	sla := protected.Group("/sla")
	sla.Put("/idle-limits", cfg.SLA.UpsertIdleLimit)
	sla.Put("/solution-times", cfg.SLA.UpsertSolutionTime)

	approvals := protected.Group("/approvals")
	approvals.Post("", cfg.Approvals.CreateRequest)
	approvals.Get("/pending", cfg.Approvals.ListPending)
	approvals.Post("/:id/approve", cfg.Approvals.Approve)
	approvals.Post("/:id/reject", cfg.Approvals.Reject)
	approvals.Post("/:id/cancel", cfg.Approvals.Cancel)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
