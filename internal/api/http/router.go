package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Tickets   *handlers.TicketsHandler
	Exports   *handlers.ExportHandler
	Users     *handlers.UsersHandler
	Session   *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:       StaticFS(),
		PathPrefix: "static",
	}))

	public := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.Session.Identify, h}
	}
	app.Get("/register", public(cfg.Auth.RegisterPage)...)
	app.Post("/register", public(cfg.Auth.Register)...)
	app.Get(auth.LoginPath, public(cfg.Auth.LoginPage)...)
	app.Post(auth.LoginPath, public(cfg.Auth.Login)...)
	app.Get(auth.LogoutPath, public(cfg.Auth.Logout)...)

	protected := func(h ...fiber.Handler) []fiber.Handler {
		return append([]fiber.Handler{cfg.Session.Identify, auth.RequireLogin()}, h...)
	}
	app.Get(auth.DashboardPath, protected(cfg.Dashboard.Dashboard)...)
	app.Get(auth.ChangePasswordPath, protected(cfg.Auth.ChangePasswordPage)...)
	app.Post(auth.ChangePasswordPath, protected(cfg.Auth.ChangePassword)...)

	app.Get("/new", protected(auth.RequireAction(auth.ActionCreateTicket), cfg.Tickets.NewTicketPage)...)
	app.Post("/new", protected(auth.RequireAction(auth.ActionCreateTicket), cfg.Tickets.CreateTicket)...)
	app.Get("/ticket/:id", protected(cfg.Tickets.TicketDetail)...)
	app.Post("/update_status", append([]fiber.Handler{apiRoute}, protected(cfg.Tickets.UpdateStatus)...)...)
	app.Post("/assign_ticket", protected(auth.RequireAction(auth.ActionAssignTicket), cfg.Tickets.AssignTicket)...)
	app.Get("/export/:format", protected(auth.RequireAction(auth.ActionExportTickets), cfg.Exports.Export)...)

	app.Get("/manage_users", protected(auth.RequireAction(auth.ActionManageUsers), cfg.Users.ManageUsers)...)
	app.Post("/change_role", protected(auth.RequireAction(auth.ActionManageUsers), cfg.Users.ChangeRole)...)
}
