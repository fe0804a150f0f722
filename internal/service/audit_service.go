package service

import (
	"context"
	"strings"

	"github.com/spec-kit/stall-admin/internal/daterange"
	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/events"
	"github.com/spec-kit/stall-admin/internal/repository"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

// auditTableMissingMessage is shown when the audit table has not been created.
const auditTableMissingMessage = "Audit logs table not found. Apply the audit_logs migration and retry."

// AuditService lists the audit trail.
type AuditService struct {
	audits     repository.AuditRepository
	calendar   *daterange.Calendar
	dispatcher events.Dispatcher
}

// NewAuditService constructs the service.
func NewAuditService(audits repository.AuditRepository, calendar *daterange.Calendar, dispatcher events.Dispatcher) *AuditService {
	return &AuditService{audits: audits, calendar: calendar, dispatcher: dispatcher}
}

// AuditListInput are the listing filters as received from the caller.
type AuditListInput struct {
	Range  RangeQuery
	Action string
	Entity string
	UserID string
	Limit  int
}

// List returns entries newest first. Viewing the trail is itself recorded.
func (s *AuditService) List(ctx context.Context, actor events.Actor, input AuditListInput) ([]domain.AuditEntry, error) {
	rng, err := resolveRange(s.calendar, input.Range)
	if err != nil {
		return nil, err
	}
	if v := s.calendar.Validate(rng, daterange.ValidateOptions{AllowFuture: true}); !v.Valid {
		return nil, apperrors.NewValidationError(v.Reason)
	}

	filter := repository.AuditFilter{Range: rng, Limit: input.Limit}
	if a := strings.TrimSpace(input.Action); a != "" {
		action := domain.AuditAction(strings.ToUpper(a))
		filter.Action = &action
	}
	if e := strings.TrimSpace(input.Entity); e != "" {
		entity := domain.AuditEntity(strings.ToUpper(e))
		filter.Entity = &entity
	}
	if u := strings.TrimSpace(input.UserID); u != "" {
		filter.UserID = &u
	}

	entries, err := s.audits.List(ctx, filter)
	if err != nil {
		if repository.IsMissingRelation(err) {
			return nil, apperrors.NewNotFound(auditTableMissingMessage)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		s.dispatcher.Publish(ctx, events.Event{Type: events.EventAuditLogViewed, Actor: actor})
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}
