package dto

import (
	"time"

	"github.com/spec-kit/stall-admin/internal/domain"
)

// RangeQuery is the shared date selection of listing endpoints.
type RangeQuery struct {
	Preset    string `query:"preset"`
	StartDate string `query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// ReportQuery parameters for GET /reports/summary.
type ReportQuery struct {
	RangeQuery
	StallID string `query:"stallId"`
}

// ReportSummaryResponse totals for the selected range.
type ReportSummaryResponse struct {
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	StallID       *string `json:"stallId"`
	SalesTotal    float64 `json:"salesTotal"`
	ExpensesTotal float64 `json:"expensesTotal"`
	Net           float64 `json:"net"`
}

// AuditLogQuery parameters for GET /audit-logs.
type AuditLogQuery struct {
	RangeQuery
	Action string `query:"action"`
	Entity string `query:"entity"`
	UserID string `query:"userId" validate:"omitempty,uuid"`
	Limit  int    `query:"limit" validate:"omitempty,min=1"`
}

// AuditLogResponse is one audit trail row.
type AuditLogResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  *string   `json:"entityId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Details   string    `json:"details"`
	IPAddress *string   `json:"ipAddress"`
	UserAgent *string   `json:"userAgent"`
	OldValue  *string   `json:"oldValue"`
	NewValue  *string   `json:"newValue"`
	StallID   *string   `json:"stallId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAuditLogResponse maps a domain entry.
func NewAuditLogResponse(e domain.AuditEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:        e.ID,
		Action:    string(e.Action),
		Entity:    string(e.Entity),
		EntityID:  e.EntityID,
		UserID:    e.UserID,
		UserName:  e.UserName,
		Details:   e.Details,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		StallID:   e.StallID,
		Timestamp: e.Timestamp,
	}
}
