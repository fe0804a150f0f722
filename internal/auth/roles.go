package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stall-admin/internal/domain"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

// Operation names a privileged gateway action.
type Operation string

const (
	OpCreateStaff      Operation = "create-staff"
	OpResendInvite     Operation = "resend-invite"
	OpReadAuthMetadata Operation = "read-auth-metadata"
	OpDeleteStaff      Operation = "delete-staff"
	OpListAuditLogs    Operation = "list-audit-logs"
	OpUnknownStaff     Operation = "unknown-staff"
	OpReadMetrics      Operation = "read-metrics"
)

// IsAuthorized is the single authorization rule: admins may do anything;
// anyone else may only read their own auth metadata.
func IsAuthorized(op Operation, role domain.Role, callerID, targetID string) bool {
	if role == domain.RoleAdmin {
		return true
	}
	return op == OpReadAuthMetadata && callerID != "" && callerID == targetID
}

// Require enforces IsAuthorized for op. targetParam names the route
// parameter holding the target id and may be empty.
func Require(op Operation, targetParam string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewForbidden()
		}
		target := ""
		if targetParam != "" {
			target = c.Params(targetParam)
		}
		if !IsAuthorized(op, principal.Role(), principal.UserID, target) {
			return apperrors.NewForbidden()
		}
		return c.Next()
	}
}

// RequireProfile ensures any authenticated profile is present.
func RequireProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal, ok := PrincipalFromContext(c); !ok || principal.Profile == nil {
			return apperrors.NewForbidden()
		}
		return c.Next()
	}
}
