package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/events"
	"github.com/spec-kit/stall-admin/internal/identity"
	"github.com/spec-kit/stall-admin/internal/repository"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

// InviteResentMessage is returned for every accepted resend, throttled or not.
const InviteResentMessage = "Email resent successfully"

// Cooldown dedupes confirmation sends per address.
type Cooldown interface {
	Acquire(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

// StaffService manages the staff account lifecycle across the identity
// provider and the profile store.
type StaffService struct {
	identity    identity.Provider
	profiles    repository.ProfileRepository
	dispatcher  events.Dispatcher
	cooldown    Cooldown
	validate    *validator.Validate
	redirectURL string
	logger      *zap.Logger
}

// StaffDependencies encapsulates collaborators required by StaffService.
type StaffDependencies struct {
	Identity   identity.Provider
	Profiles   repository.ProfileRepository
	Dispatcher events.Dispatcher
	Cooldown   Cooldown
	Logger     *zap.Logger
}

// NewStaffService constructs the service. redirectURL is the link target
// embedded in confirmation emails.
func NewStaffService(redirectURL string, deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		identity:    deps.Identity,
		profiles:    deps.Profiles,
		dispatcher:  deps.Dispatcher,
		cooldown:    deps.Cooldown,
		validate:    validator.New(),
		redirectURL: redirectURL,
		logger:      logger,
	}
}

// CreateStaffInput carries the fields for a new staff account.
type CreateStaffInput struct {
	Email         string `validate:"required"`
	Password      string `validate:"required"`
	FullName      string `validate:"required"`
	ContactNumber *string
	StallID       *string
}

// CreateStaffResult is the outcome of CreateStaff.
type CreateStaffResult struct {
	UserID           string
	ConfirmationSent bool
}

// ResendInviteInput selects the invite target. Email wins over StaffID.
type ResendInviteInput struct {
	Email   string
	StaffID string
}

// AuthMetadata is the identity-side view of a staff account.
type AuthMetadata struct {
	EmailConfirmedAt *time.Time
	LastSignInAt     *time.Time
}

// sendResult records a best-effort side effect. It is only ever logged.
type sendResult struct {
	op  string
	err error
}

func (r sendResult) log(logger *zap.Logger, fields ...zap.Field) {
	if r.err == nil {
		return
	}
	logger.Warn(r.op+" failed; continuing", append(fields, zap.Error(r.err))...)
}

// CreateStaff registers an unconfirmed identity, writes an inactive staff
// profile and sends the confirmation email. A profile failure leaves the
// identity in place.
func (s *StaffService) CreateStaff(ctx context.Context, actor events.Actor, input CreateStaffInput) (*CreateStaffResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidationError("Missing required fields")
	}

	user, err := s.identity.CreateUser(ctx, input.Email, input.Password)
	if err != nil {
		return nil, providerError(err)
	}
	if user == nil || user.ID == "" {
		return nil, apperrors.NewProviderError("Unable to create user", nil)
	}

	profile := &domain.Profile{
		ID:            user.ID,
		FullName:      input.FullName,
		Email:         input.Email,
		ContactNumber: emptyToNil(input.ContactNumber),
		Role:          domain.RoleStaff,
		Status:        domain.ProfileStatusInactive,
		StallID:       emptyToNil(input.StallID),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		s.logger.Error("profile insert failed after identity creation",
			zap.String("user_id", user.ID), zap.Error(err))
		return nil, storeError(err)
	}

	sendResult{op: "confirmation email", err: s.identity.ResendSignup(ctx, input.Email, s.redirectURL)}.
		log(s.logger, zap.String("user_id", user.ID))

	s.publish(ctx, events.Event{
		Type:      events.EventStaffCreated,
		SubjectID: user.ID,
		Actor:     actor,
		Payload: events.StaffCreatedPayload{
			Email:            input.Email,
			FullName:         input.FullName,
			StallID:          profile.StallID,
			ConfirmationSent: true,
		},
	})

	return &CreateStaffResult{UserID: user.ID, ConfirmationSent: true}, nil
}

// ResendInvite sends another signup confirmation email.
func (s *StaffService) ResendInvite(ctx context.Context, actor events.Actor, input ResendInviteInput) (string, error) {
	targetEmail := strings.TrimSpace(input.Email)
	userID := ""

	if targetEmail == "" && input.StaffID != "" {
		profile, err := s.profiles.GetByID(ctx, input.StaffID)
		if err != nil || profile == nil || profile.Email == "" {
			return "", apperrors.NewNotFound("User not found")
		}
		targetEmail = profile.Email
		userID = profile.ID
	} else if targetEmail != "" {
		if profile, err := s.profiles.GetByEmail(ctx, targetEmail); err == nil && profile != nil {
			userID = profile.ID
		}
	}

	if targetEmail == "" {
		return "", apperrors.NewValidationError("Missing email")
	}

	if userID != "" {
		if user, err := s.identity.GetUserByID(ctx, userID); err == nil && user.Confirmed() {
			return "", apperrors.NewValidationError("User email is already confirmed")
		}
	}

	if !s.acquireCooldown(ctx, targetEmail) {
		s.logger.Info("confirmation email sent recently; skipping", zap.String("email", targetEmail))
		s.publishInvite(ctx, actor, userID, targetEmail, true)
		return InviteResentMessage, nil
	}

	if err := s.identity.ResendSignup(ctx, targetEmail, s.redirectURL); err != nil {
		if s.cooldown != nil {
			if relErr := s.cooldown.Release(ctx, targetEmail); relErr != nil {
				s.logger.Warn("invite cooldown release failed", zap.Error(relErr))
			}
		}
		apiErr, ok := identity.AsAPIError(err)
		if !ok {
			return "", apperrors.NewInternalError(err)
		}
		return "", apperrors.NewProviderError(normalizeResendError(apiErr.Message), err)
	}

	s.publishInvite(ctx, actor, userID, targetEmail, false)
	return InviteResentMessage, nil
}

// acquireCooldown fails open: a cooldown store error allows the send.
func (s *StaffService) acquireCooldown(ctx context.Context, email string) bool {
	if s.cooldown == nil {
		return true
	}
	ok, err := s.cooldown.Acquire(ctx, email)
	if err != nil {
		s.logger.Warn("invite cooldown unavailable; sending anyway", zap.Error(err))
		return true
	}
	return ok
}

func (s *StaffService) publishInvite(ctx context.Context, actor events.Actor, userID, email string, throttled bool) {
	s.publish(ctx, events.Event{
		Type:      events.EventStaffInviteSent,
		SubjectID: userID,
		Actor:     actor,
		Payload:   events.StaffInviteSentPayload{Email: email, Throttled: throttled},
	})
}

func normalizeResendError(msg string) string {
	switch {
	case strings.Contains(msg, "already confirmed"):
		return "User email is already confirmed"
	case strings.Contains(msg, "not found"):
		return "User not found"
	default:
		return "Failed to resend email: " + msg
	}
}

// DeleteStaff removes the profile (best effort) and then the identity. An
// identity failure after the profile is gone is not compensated.
func (s *StaffService) DeleteStaff(ctx context.Context, actor events.Actor, staffID string) error {
	var payload events.StaffDeletedPayload
	if profile, err := s.profiles.GetByID(ctx, staffID); err == nil && profile != nil {
		payload = events.StaffDeletedPayload{Email: profile.Email, FullName: profile.FullName, StallID: profile.StallID}
	}

	if err := s.profiles.Delete(ctx, staffID); err != nil {
		s.logger.Debug("profile delete failed; continuing with identity", zap.String("staff_id", staffID), zap.Error(err))
	}

	if err := s.identity.DeleteUser(ctx, staffID); err != nil {
		return providerError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventStaffDeleted,
		SubjectID: staffID,
		Actor:     actor,
		Payload:   payload,
	})
	return nil
}

// AuthMetadata returns confirmation and last sign-in timestamps.
func (s *StaffService) AuthMetadata(ctx context.Context, staffID string) (*AuthMetadata, error) {
	user, err := s.identity.GetUserByID(ctx, staffID)
	if err != nil {
		if apiErr, ok := identity.AsAPIError(err); ok && apiErr.Message != "" {
			return nil, apperrors.NewNotFound(apiErr.Message)
		}
		return nil, apperrors.NewNotFound("User not found")
	}
	if user == nil {
		return nil, apperrors.NewNotFound("User not found")
	}
	return &AuthMetadata{EmailConfirmedAt: user.EmailConfirmedAt, LastSignInAt: user.LastSignInAt}, nil
}

func (s *StaffService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, event)
}

// providerError maps identity failures: provider rejections pass their
// message through as 400, transport failures become 500.
func providerError(err error) error {
	if apiErr, ok := identity.AsAPIError(err); ok {
		return apperrors.NewProviderError(apiErr.Message, err)
	}
	return apperrors.NewInternalError(err)
}

// storeError maps profile store failures the same way.
func storeError(err error) error {
	var storeErr *repository.StoreError
	if errors.As(err, &storeErr) {
		return apperrors.NewProviderError(storeErr.Message, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperrors.NewProviderError(pgErr.Message, err)
	}
	return apperrors.NewInternalError(err)
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
