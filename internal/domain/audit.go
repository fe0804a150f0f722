package domain

import "time"

// AuditAction enumerates recorded activity kinds.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionResendInvite AuditAction = "RESEND_INVITE"
	AuditActionViewAuditLog AuditAction = "VIEW_AUDIT_LOG"
)

// AuditEntity enumerates the entity types an audit entry can reference.
type AuditEntity string

const (
	AuditEntityStaff    AuditEntity = "STAFF"
	AuditEntityAuditLog AuditEntity = "AUDIT_LOG"
)

// AuditEntry is one row of the audit trail.
type AuditEntry struct {
	ID        string
	Action    AuditAction
	Entity    AuditEntity
	EntityID  *string
	UserID    string
	UserName  string
	Details   string
	IPAddress *string
	UserAgent *string
	OldValue  *string
	NewValue  *string
	StallID   *string
	Timestamp time.Time
}
