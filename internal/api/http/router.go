package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Departments     *handlers.DepartmentsHandler
	Citizens        *handlers.CitizensHandler
	Staff           *handlers.StaffHandler
	Grievances      *handlers.GrievancesHandler
	StaffGrievances *handlers.StaffGrievancesHandler
	Audit           *handlers.AuditHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/departments", cfg.Departments.List)

	authGroup := app.Group("/auth")
	authGroup.Post("/citizens/register", cfg.Citizens.Register)
	authGroup.Post("/citizens/login", cfg.Citizens.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Staff.ChangePassword)

	citizenGroup := app.Group("/grievances", cfg.AuthMiddleware.Handle, auth.RequireCitizen())
	citizenGroup.Post("/", cfg.Grievances.Submit)
	citizenGroup.Get("/", cfg.Grievances.List)
	citizenGroup.Get("/:id", cfg.Grievances.Get)

	staffGroup := app.Group("/staff", cfg.AuthMiddleware.Handle)

	staffGrievances := staffGroup.Group("/grievances", auth.RequireStaffRole(domain.RoleEmployee, domain.RoleDepartmentAdmin))
	staffGrievances.Get("/", cfg.StaffGrievances.List)
	staffGrievances.Get("/:id", cfg.StaffGrievances.Get)
	staffGrievances.Post("/:id/actions", cfg.StaffGrievances.ApplyAction)

	auditGroup := staffGroup.Group("/audit", auth.RequireStaffRole(domain.RoleDepartmentAdmin))
	auditGroup.Get("/", cfg.Audit.List)
}
