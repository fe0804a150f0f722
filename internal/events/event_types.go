package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStaffCreated    EventType = "staff_created"
	EventStaffInviteSent EventType = "staff_invite_resent"
	EventStaffDeleted    EventType = "staff_deleted"
	EventAuditLogViewed  EventType = "audit_log_viewed"
)

// Actor encapsulates who triggered an event and from where.
type Actor struct {
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StaffCreatedPayload payload.
type StaffCreatedPayload struct {
	Email            string  `json:"email"`
	FullName         string  `json:"full_name"`
	StallID          *string `json:"stall_id,omitempty"`
	ConfirmationSent bool    `json:"confirmation_sent"`
}

// StaffInviteSentPayload payload.
type StaffInviteSentPayload struct {
	Email     string `json:"email"`
	Throttled bool   `json:"throttled"`
}

// StaffDeletedPayload payload.
type StaffDeletedPayload struct {
	Email    string  `json:"email,omitempty"`
	FullName string  `json:"full_name,omitempty"`
	StallID  *string `json:"stall_id,omitempty"`
}
