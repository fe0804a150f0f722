// Package mocks holds testify mocks for the gateway's outbound ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/stall-admin/internal/domain"
)

// IdentityProvider mocks identity.Provider.
type IdentityProvider struct {
	mock.Mock
}

// NewIdentityProvider returns a mock that asserts its expectations on cleanup.
func NewIdentityProvider(t mock.TestingT) *IdentityProvider {
	m := &IdentityProvider{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *IdentityProvider) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	args := m.Called(ctx, accessToken)
	return identityArg(args, 0), args.Error(1)
}

func (m *IdentityProvider) CreateUser(ctx context.Context, email, password string) (*domain.Identity, error) {
	args := m.Called(ctx, email, password)
	return identityArg(args, 0), args.Error(1)
}

func (m *IdentityProvider) GetUserByID(ctx context.Context, id string) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	return identityArg(args, 0), args.Error(1)
}

func (m *IdentityProvider) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *IdentityProvider) ResendSignup(ctx context.Context, email, redirectTo string) error {
	return m.Called(ctx, email, redirectTo).Error(0)
}

func identityArg(args mock.Arguments, i int) *domain.Identity {
	if v, ok := args.Get(i).(*domain.Identity); ok {
		return v
	}
	return nil
}
