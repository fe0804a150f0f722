package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/repository"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	UserID  string
	Profile *domain.Profile
}

// Role returns the caller's profile role.
func (p *Principal) Role() domain.Role {
	if p == nil || p.Profile == nil {
		return ""
	}
	return p.Profile.Role
}

// AuthMiddleware resolves bearer tokens and loads the caller's profile.
type AuthMiddleware struct {
	resolver BearerResolver
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver BearerResolver, profiles repository.ProfileRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, profiles: profiles, logger: logger}
}

// Handle authenticates the caller. Every failure produces the same 403 so
// the response does not reveal which step rejected the request.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return apperrors.NewForbidden()
	}

	userID, err := m.resolver.Resolve(c.UserContext(), token)
	if err != nil {
		m.logger.Debug("bearer rejected", zap.Error(err))
		return apperrors.NewForbidden()
	}

	profile, err := m.profiles.GetByID(c.UserContext(), userID)
	if err != nil || profile == nil {
		if err != nil && !repository.IsNotFound(err) {
			m.logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return apperrors.NewForbidden()
	}

	c.Locals(principalKey, &Principal{UserID: userID, Profile: profile})
	return c.Next()
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
