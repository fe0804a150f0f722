// Package audit writes the best-effort activity trail for gateway side effects.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/events"
	"github.com/spec-kit/stall-admin/internal/repository"
)

// Recorder persists audit entries and never fails its caller.
type Recorder struct {
	repo          repository.AuditRepository
	logger        *zap.Logger
	now           func() time.Time
	missingWarned atomic.Bool
}

// NewRecorder creates a recorder backed by repo.
func NewRecorder(repo repository.AuditRepository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

// RegisterHandlers subscribes the recorder to staff lifecycle events.
func (r *Recorder) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventStaffCreated, r.handle)
	dispatcher.Subscribe(events.EventStaffInviteSent, r.handle)
	dispatcher.Subscribe(events.EventStaffDeleted, r.handle)
	dispatcher.Subscribe(events.EventAuditLogViewed, r.handle)
}

// Record inserts entry. A missing audit table is warned about once per
// recorder; other failures are logged every time.
func (r *Recorder) Record(ctx context.Context, entry domain.AuditEntry) {
	if r == nil || r.repo == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now().UTC()
	}

	err := r.repo.Create(ctx, &entry)
	switch {
	case err == nil:
		return
	case repository.IsMissingRelation(err):
		if r.missingWarned.CompareAndSwap(false, true) {
			r.logger.Warn("audit_logs table does not exist; activities will not be recorded until migrations are applied")
		}
	default:
		r.logger.Error("failed to record audit entry",
			zap.String("action", string(entry.Action)),
			zap.String("entity", string(entry.Entity)),
			zap.Error(err),
		)
	}
}

func (r *Recorder) handle(ctx context.Context, event events.Event) error {
	entry, ok := entryFor(event)
	if !ok {
		return nil
	}
	r.Record(ctx, entry)
	return nil
}

func entryFor(event events.Event) (domain.AuditEntry, bool) {
	entry := domain.AuditEntry{
		UserID:    event.Actor.UserID,
		UserName:  event.Actor.UserName,
		IPAddress: event.Actor.IPAddress,
		UserAgent: event.Actor.UserAgent,
		Timestamp: event.Timestamp,
		Entity:    domain.AuditEntityStaff,
	}
	if event.SubjectID != "" {
		id := event.SubjectID
		entry.EntityID = &id
	}

	switch p := event.Payload.(type) {
	case events.StaffCreatedPayload:
		entry.Action = domain.AuditActionCreate
		entry.Details = fmt.Sprintf("Created staff account: %s", p.Email)
		entry.StallID = p.StallID
		entry.NewValue = marshal(p)
	case events.StaffInviteSentPayload:
		entry.Action = domain.AuditActionResendInvite
		entry.Details = fmt.Sprintf("Resent confirmation email to %s", p.Email)
		if p.Throttled {
			entry.Details += " (skipped, sent recently)"
		}
	case events.StaffDeletedPayload:
		entry.Action = domain.AuditActionDelete
		entry.Details = fmt.Sprintf("Deleted staff account: %s", event.SubjectID)
		entry.StallID = p.StallID
		entry.OldValue = marshal(p)
	default:
		if event.Type != events.EventAuditLogViewed {
			return domain.AuditEntry{}, false
		}
		entry.Action = domain.AuditActionViewAuditLog
		entry.Entity = domain.AuditEntityAuditLog
		entry.Details = "Admin accessed audit log"
	}
	return entry, true
}

func marshal(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
