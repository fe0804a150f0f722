package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/events"
	"github.com/spec-kit/stall-admin/internal/identity"
	"github.com/spec-kit/stall-admin/internal/mocks"
	"github.com/spec-kit/stall-admin/internal/repository"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

const redirect = "https://site.example/login"

type staffFixture struct {
	provider *mocks.IdentityProvider
	profiles *mocks.ProfileRepository
	cooldown *stubCooldown
	events   []events.Event
	service  *StaffService
}

type stubCooldown struct {
	allow    bool
	err      error
	released []string
}

func (c *stubCooldown) Acquire(context.Context, string) (bool, error) {
	return c.allow, c.err
}

func (c *stubCooldown) Release(_ context.Context, email string) error {
	c.released = append(c.released, email)
	return nil
}

func newStaffFixture(t *testing.T) *staffFixture {
	fx := &staffFixture{
		provider: mocks.NewIdentityProvider(t),
		profiles: mocks.NewProfileRepository(t),
		cooldown: &stubCooldown{allow: true},
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, et := range []events.EventType{events.EventStaffCreated, events.EventStaffInviteSent, events.EventStaffDeleted} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			fx.events = append(fx.events, e)
			return nil
		})
	}
	fx.service = NewStaffService(redirect, StaffDependencies{
		Identity:   fx.provider,
		Profiles:   fx.profiles,
		Dispatcher: dispatcher,
		Cooldown:   fx.cooldown,
		Logger:     zap.NewNop(),
	})
	return fx
}

var admin = events.Actor{UserID: "admin-1", UserName: "Admin"}

func assertDomainError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, status, de.HTTPStatus)
	assert.Equal(t, message, de.Message)
}

func validInput() CreateStaffInput {
	stall := "3"
	return CreateStaffInput{Email: "new@stall.ph", Password: "secret12", FullName: "New Staff", StallID: &stall}
}

func TestCreateStaff_MissingFields(t *testing.T) {
	for _, in := range []CreateStaffInput{
		{Password: "x", FullName: "y"},
		{Email: "a@b.c", FullName: "y"},
		{Email: "a@b.c", Password: "x"},
	} {
		fx := newStaffFixture(t)
		_, err := fx.service.CreateStaff(context.Background(), admin, in)
		assertDomainError(t, err, http.StatusBadRequest, "Missing required fields")
	}
}

func TestCreateStaff_Success(t *testing.T) {
	fx := newStaffFixture(t)
	ctx := context.Background()
	empty := ""
	in := validInput()
	in.ContactNumber = &empty

	fx.provider.On("CreateUser", ctx, "new@stall.ph", "secret12").Return(&domain.Identity{ID: "u-1"}, nil).Once()
	fx.profiles.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.ID == "u-1" && p.Role == domain.RoleStaff && p.Status == domain.ProfileStatusInactive &&
			p.ContactNumber == nil && *p.StallID == "3"
	})).Return(nil).Once()
	fx.provider.On("ResendSignup", ctx, "new@stall.ph", redirect).Return(nil).Once()

	res, err := fx.service.CreateStaff(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, &CreateStaffResult{UserID: "u-1", ConfirmationSent: true}, res)
	require.Len(t, fx.events, 1)
	assert.Equal(t, events.EventStaffCreated, fx.events[0].Type)
}

func TestCreateStaff_DuplicateEmailCreatesNoProfile(t *testing.T) {
	fx := newStaffFixture(t)
	fx.provider.On("CreateUser", mock.Anything, "new@stall.ph", "secret12").
		Return(nil, &identity.APIError{Status: 422, Message: "A user with this email address has already been registered"})

	_, err := fx.service.CreateStaff(context.Background(), admin, validInput())
	assertDomainError(t, err, http.StatusBadRequest, "A user with this email address has already been registered")
	fx.profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, fx.events)
}

func TestCreateStaff_TransportFailureIsInternal(t *testing.T) {
	fx := newStaffFixture(t)
	fx.provider.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: i/o timeout"))

	_, err := fx.service.CreateStaff(context.Background(), admin, validInput())
	assertDomainError(t, err, http.StatusInternalServerError, "Internal Server Error")
}

func TestCreateStaff_ProfileFailureKeepsIdentity(t *testing.T) {
	fx := newStaffFixture(t)
	fx.provider.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).Return(&domain.Identity{ID: "u-2"}, nil)
	fx.profiles.On("Create", mock.Anything, mock.Anything).
		Return(&repository.StoreError{Status: 409, Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := fx.service.CreateStaff(context.Background(), admin, validInput())
	assertDomainError(t, err, http.StatusBadRequest, "duplicate key value violates unique constraint")
	fx.provider.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	fx.provider.AssertNotCalled(t, "ResendSignup", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateStaff_InviteFailureIsBestEffort(t *testing.T) {
	fx := newStaffFixture(t)
	fx.provider.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).Return(&domain.Identity{ID: "u-3"}, nil)
	fx.profiles.On("Create", mock.Anything, mock.Anything).Return(nil)
	fx.provider.On("ResendSignup", mock.Anything, mock.Anything, mock.Anything).
		Return(&identity.APIError{Status: 429, Message: "Email rate limit exceeded"})

	res, err := fx.service.CreateStaff(context.Background(), admin, validInput())
	require.NoError(t, err)
	assert.True(t, res.ConfirmationSent)
}

func TestResendInvite_EmailWinsOverStaffID(t *testing.T) {
	fx := newStaffFixture(t)
	fx.profiles.On("GetByEmail", mock.Anything, "a@stall.ph").Return(nil, repository.ErrNotFound)
	fx.provider.On("ResendSignup", mock.Anything, "a@stall.ph", redirect).Return(nil).Once()

	msg, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{Email: "a@stall.ph", StaffID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, InviteResentMessage, msg)
	fx.profiles.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestResendInvite_StaffIDLookup(t *testing.T) {
	fx := newStaffFixture(t)
	fx.profiles.On("GetByID", mock.Anything, "s-1").Return(&domain.Profile{ID: "s-1", Email: "s@stall.ph"}, nil)
	fx.provider.On("GetUserByID", mock.Anything, "s-1").Return(&domain.Identity{ID: "s-1"}, nil)
	fx.provider.On("ResendSignup", mock.Anything, "s@stall.ph", redirect).Return(nil)

	_, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{StaffID: "s-1"})
	require.NoError(t, err)
	require.Len(t, fx.events, 1)
	assert.Equal(t, "s-1", fx.events[0].SubjectID)
}

func TestResendInvite_Failures(t *testing.T) {
	t.Run("unknown staff id", func(t *testing.T) {
		fx := newStaffFixture(t)
		fx.profiles.On("GetByID", mock.Anything, "s-x").Return(nil, repository.ErrNotFound)
		_, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{StaffID: "s-x"})
		assertDomainError(t, err, http.StatusNotFound, "User not found")
	})

	t.Run("profile without email", func(t *testing.T) {
		fx := newStaffFixture(t)
		fx.profiles.On("GetByID", mock.Anything, "s-y").Return(&domain.Profile{ID: "s-y"}, nil)
		_, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{StaffID: "s-y"})
		assertDomainError(t, err, http.StatusNotFound, "User not found")
	})

	t.Run("nothing given", func(t *testing.T) {
		fx := newStaffFixture(t)
		_, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{})
		assertDomainError(t, err, http.StatusBadRequest, "Missing email")
	})

	t.Run("already confirmed", func(t *testing.T) {
		fx := newStaffFixture(t)
		confirmed := time.Now()
		fx.profiles.On("GetByEmail", mock.Anything, "c@stall.ph").Return(&domain.Profile{ID: "s-c"}, nil)
		fx.provider.On("GetUserByID", mock.Anything, "s-c").Return(&domain.Identity{ID: "s-c", EmailConfirmedAt: &confirmed}, nil)
		_, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{Email: "c@stall.ph"})
		assertDomainError(t, err, http.StatusBadRequest, "User email is already confirmed")
		fx.provider.AssertNotCalled(t, "ResendSignup", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResendInvite_ProviderErrorNormalization(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"Email address already confirmed", "User email is already confirmed"},
		{"User not found", "User not found"},
		{"For security purposes, you can only request this after 60 seconds.", "Failed to resend email: For security purposes, you can only request this after 60 seconds."},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			fx := newStaffFixture(t)
			fx.profiles.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
			fx.provider.On("ResendSignup", mock.Anything, mock.Anything, mock.Anything).
				Return(&identity.APIError{Status: 400, Message: tc.provider})

			_, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{Email: "a@stall.ph"})
			assertDomainError(t, err, http.StatusBadRequest, tc.want)
			assert.Equal(t, []string{"a@stall.ph"}, fx.cooldown.released)
		})
	}
}

func TestResendInvite_Cooldown(t *testing.T) {
	t.Run("throttled send is skipped but succeeds", func(t *testing.T) {
		fx := newStaffFixture(t)
		fx.cooldown.allow = false
		fx.profiles.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

		msg, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{Email: "a@stall.ph"})
		require.NoError(t, err)
		assert.Equal(t, InviteResentMessage, msg)
		fx.provider.AssertNotCalled(t, "ResendSignup", mock.Anything, mock.Anything, mock.Anything)
		require.Len(t, fx.events, 1)
		assert.True(t, fx.events[0].Payload.(events.StaffInviteSentPayload).Throttled)
	})

	t.Run("cooldown store failure fails open", func(t *testing.T) {
		fx := newStaffFixture(t)
		fx.cooldown.allow = false
		fx.cooldown.err = errors.New("redis: connection refused")
		fx.profiles.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
		fx.provider.On("ResendSignup", mock.Anything, "a@stall.ph", redirect).Return(nil).Once()

		_, err := fx.service.ResendInvite(context.Background(), admin, ResendInviteInput{Email: "a@stall.ph"})
		require.NoError(t, err)
	})
}

func TestDeleteStaff(t *testing.T) {
	t.Run("profile failure is ignored", func(t *testing.T) {
		fx := newStaffFixture(t)
		fx.profiles.On("GetByID", mock.Anything, "s-1").Return(nil, repository.ErrNotFound)
		fx.profiles.On("Delete", mock.Anything, "s-1").Return(errors.New("permission denied")).Once()
		fx.provider.On("DeleteUser", mock.Anything, "s-1").Return(nil).Once()

		require.NoError(t, fx.service.DeleteStaff(context.Background(), admin, "s-1"))
		require.Len(t, fx.events, 1)
		assert.Equal(t, events.EventStaffDeleted, fx.events[0].Type)
	})

	t.Run("nonexistent identity still attempts profile delete", func(t *testing.T) {
		fx := newStaffFixture(t)
		fx.profiles.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
		fx.profiles.On("Delete", mock.Anything, "ghost").Return(repository.ErrNotFound).Once()
		fx.provider.On("DeleteUser", mock.Anything, "ghost").Return(&identity.APIError{Status: 404, Message: "User not found"})

		err := fx.service.DeleteStaff(context.Background(), admin, "ghost")
		assertDomainError(t, err, http.StatusBadRequest, "User not found")
		fx.profiles.AssertCalled(t, "Delete", mock.Anything, "ghost")
		assert.Empty(t, fx.events)
	})
}

func TestAuthMetadata(t *testing.T) {
	fx := newStaffFixture(t)
	confirmed := time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)
	fx.provider.On("GetUserByID", mock.Anything, "s-1").Return(&domain.Identity{ID: "s-1", EmailConfirmedAt: &confirmed}, nil)
	fx.provider.On("GetUserByID", mock.Anything, "s-2").Return(nil, &identity.APIError{Status: 404, Message: "User not found"})
	fx.provider.On("GetUserByID", mock.Anything, "s-3").Return(nil, errors.New("timeout"))

	meta, err := fx.service.AuthMetadata(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, &confirmed, meta.EmailConfirmedAt)
	assert.Nil(t, meta.LastSignInAt)

	_, err = fx.service.AuthMetadata(context.Background(), "s-2")
	assertDomainError(t, err, http.StatusNotFound, "User not found")

	_, err = fx.service.AuthMetadata(context.Background(), "s-3")
	assertDomainError(t, err, http.StatusNotFound, "User not found")
}
