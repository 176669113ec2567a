package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-sla-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-sla-service/internal/auth"
	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Escalations    *handlers.EscalationsHandler
	Dashboard      *handlers.DashboardHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authProtected.Post("/password/change", cfg.Staff.ChangePassword)

	// intake form master data, readable by any authenticated caller
	masterData := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	masterData.Get("/units", cfg.Admin.ListUnits)
	masterData.Get("/categories", cfg.Admin.ListServiceCategories)
	masterData.Get("/patient-types", cfg.Admin.ListPatientTypes)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Put("/tickets/:id/sentiment", cfg.StaffTickets.AttachSentiment)
	staff.Get("/tickets/:id/escalations", cfg.StaffTickets.ListEscalations)
	staff.Get("/tickets/:id/evaluate", cfg.Escalations.EvaluateTicket)

	staff.Post("/escalations/sweep", cfg.Escalations.RunSweep)
	staff.Post("/escalations/:id/resolve", cfg.Escalations.ResolveEscalation)

	staff.Get("/dashboard/summary", cfg.Dashboard.Summary)
	staff.Get("/dashboard/escalations", cfg.Dashboard.EscalationStats)
	staff.Get("/dashboard/breached", cfg.Dashboard.BreachedTickets)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Post("/units", cfg.Admin.CreateUnit)
	admin.Post("/categories", cfg.Admin.CreateServiceCategory)
	admin.Post("/patient-types", cfg.Admin.CreatePatientType)
	admin.Get("/sla-rules", cfg.Admin.ListSlaRules)
	admin.Post("/sla-rules", cfg.Admin.CreateSlaRule)
	admin.Put("/sla-rules/:id", cfg.Admin.UpdateSlaRule)
	admin.Get("/escalation-rules", cfg.Admin.ListEscalationRules)
	admin.Post("/escalation-rules", cfg.Admin.CreateEscalationRule)
	admin.Put("/escalation-rules/:id", cfg.Admin.UpdateEscalationRule)
	admin.Get("/staff", cfg.Admin.ListStaff)
	admin.Post("/staff", cfg.Admin.CreateStaff)
}
