package auth

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/mocks"
	"github.com/spec-kit/stall-admin/internal/repository"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

func TestIsAuthorized(t *testing.T) {
	ops := []Operation{OpCreateStaff, OpResendInvite, OpReadAuthMetadata, OpDeleteStaff, OpListAuditLogs, OpUnknownStaff, OpReadMetrics}

	for _, op := range ops {
		assert.True(t, IsAuthorized(op, domain.RoleAdmin, "a", "b"), "admin %s", op)
		assert.False(t, IsAuthorized(op, domain.RoleStaff, "a", "b"), "staff other %s", op)
		assert.False(t, IsAuthorized(op, "", "a", "b"), "no role %s", op)
	}

	assert.True(t, IsAuthorized(OpReadAuthMetadata, domain.RoleStaff, "s-1", "s-1"))
	assert.False(t, IsAuthorized(OpDeleteStaff, domain.RoleStaff, "s-1", "s-1"))
	assert.False(t, IsAuthorized(OpReadAuthMetadata, domain.RoleStaff, "", ""))
}

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestTokenVerifier_Resolve(t *testing.T) {
	v := NewTokenVerifier("project-secret")
	ctx := context.Background()

	id, err := v.Resolve(ctx, signToken(t, "project-secret", "user-1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = v.Resolve(ctx, signToken(t, "project-secret", "user-1", time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Resolve(ctx, signToken(t, "other-secret", "user-1", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Resolve(ctx, signToken(t, "project-secret", "", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Resolve(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProviderResolver(t *testing.T) {
	provider := mocks.NewIdentityProvider(t)
	provider.On("GetUser", mock.Anything, "good").Return(&domain.Identity{ID: "u-1"}, nil)
	provider.On("GetUser", mock.Anything, "bad").Return(nil, errors.New("invalid JWT"))

	r := NewProviderResolver(provider)
	id, err := r.Resolve(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)

	_, err = r.Resolve(context.Background(), "bad")
	assert.Error(t, err)
}

// newTestApp mounts the middleware the same way the router does, with an
// error handler that renders DomainErrors as status + text.
func newTestApp(m *AuthMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Message)
		},
	})
	handlers := append([]fiber.Handler{m.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.UserID)
	})
	app.Get("/staff/:id/auth", handlers...)
	return app
}

func doGet(t *testing.T, app *fiber.App, path, authz string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware_UniformForbidden(t *testing.T) {
	provider := mocks.NewIdentityProvider(t)
	profiles := mocks.NewProfileRepository(t)

	provider.On("GetUser", mock.Anything, "expired").Return(nil, errors.New("token expired"))
	provider.On("GetUser", mock.Anything, "orphan").Return(&domain.Identity{ID: "u-orphan"}, nil)
	provider.On("GetUser", mock.Anything, "staff").Return(&domain.Identity{ID: "s-1"}, nil)
	profiles.On("GetByID", mock.Anything, "u-orphan").Return(nil, repository.ErrNotFound)
	profiles.On("GetByID", mock.Anything, "s-1").Return(&domain.Profile{ID: "s-1", Role: domain.RoleStaff}, nil)

	m := NewAuthMiddleware(NewProviderResolver(provider), profiles, zap.NewNop())
	app := newTestApp(m, Require(OpReadAuthMetadata, "id"))

	cases := []struct {
		name  string
		path  string
		authz string
	}{
		{"missing header", "/staff/s-1/auth", ""},
		{"not bearer", "/staff/s-1/auth", "Basic abc"},
		{"rejected token", "/staff/s-1/auth", "Bearer expired"},
		{"no profile", "/staff/u-orphan/auth", "Bearer orphan"},
		{"staff reading other", "/staff/s-2/auth", "Bearer staff"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doGet(t, app, tc.path, tc.authz)
			assert.Equal(t, fiber.StatusForbidden, status)
			assert.Equal(t, "Forbidden", body)
		})
	}

	status, body := doGet(t, app, "/staff/s-1/auth", "Bearer staff")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "s-1", body)
}

func TestRequireProfile(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.ToDomainError(err).HTTPStatus).SendString("")
		},
	})
	app.Get("/", RequireProfile(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
