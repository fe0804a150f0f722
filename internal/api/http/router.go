package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stall-admin/internal/api/http/handlers"
	"github.com/spec-kit/stall-admin/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	BasePath       string
	Health         *handlers.HealthHandler
	Staff          *handlers.StaffHandler
	Reports        *handlers.ReportHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything under /staff authenticates
// before route matching, so unknown staff sub-routes answer 404 only to admins.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.AuthMiddleware.Handle, auth.Require(auth.OpReadMetrics, ""), cfg.Health.Metrics)

	root := app.Group(cfg.BasePath)

	// Use matches by string prefix, so /staffroom would otherwise reach auth.
	root.Use("/staff", segmentBoundary(cfg.BasePath+"/staff"))
	staff := root.Group("/staff", cfg.AuthMiddleware.Handle)
	staff.Post("/", auth.Require(auth.OpCreateStaff, ""), cfg.Staff.Create)
	staff.Post("/resend-invite", auth.Require(auth.OpResendInvite, ""), cfg.Staff.ResendInvite)
	staff.Get("/:id/auth", auth.Require(auth.OpReadAuthMetadata, "id"), cfg.Staff.AuthMetadata)
	staff.Delete("/:id", auth.Require(auth.OpDeleteStaff, "id"), cfg.Staff.Delete)
	staff.Use(auth.Require(auth.OpUnknownStaff, ""), handlers.NotFound)

	root.Get("/audit-logs", cfg.AuthMiddleware.Handle, auth.Require(auth.OpListAuditLogs, ""), cfg.Reports.AuditLogs)
	root.Get("/reports/summary", cfg.AuthMiddleware.Handle, auth.RequireProfile(), cfg.Reports.Summary)

	app.Use(handlers.NotFound)
}

// segmentBoundary passes only prefix itself or paths below it and answers
// 404 for anything that merely shares the leading characters.
func segmentBoundary(prefix string) fiber.Handler {
	prefix = strings.ToLower(prefix)
	return func(c *fiber.Ctx) error {
		path := strings.ToLower(c.Path())
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return c.Next()
		}
		return handlers.NotFound(c)
	}
}
