package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stall-admin/internal/api/dto"
	"github.com/spec-kit/stall-admin/internal/auth"
	"github.com/spec-kit/stall-admin/internal/service"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

// ReportHandler exposes aggregate reports and the audit trail.
type ReportHandler struct {
	reports  *service.ReportService
	audits   *service.AuditService
	validate *validator.Validate
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService, audits *service.AuditService) *ReportHandler {
	return &ReportHandler{reports: reports, audits: audits, validate: newValidator()}
}

// Summary handles GET /reports/summary.
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	var q dto.ReportQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("Invalid query parameters")
	}
	if err := h.validate.Struct(q); err != nil {
		return queryValidationError(err)
	}

	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden()
	}

	sum, err := h.reports.Summary(c.UserContext(), principal.Profile, service.SummaryInput{
		Range:   rangeQuery(q.RangeQuery),
		StallID: q.StallID,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.ReportSummaryResponse{
		StartDate:     sum.Range.StartDate,
		EndDate:       sum.Range.EndDate,
		StallID:       sum.StallID,
		SalesTotal:    sum.SalesTotal,
		ExpensesTotal: sum.ExpensesTotal,
		Net:           sum.Net(),
	})
}

// AuditLogs handles GET /audit-logs.
func (h *ReportHandler) AuditLogs(c *fiber.Ctx) error {
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("Invalid query parameters")
	}
	if err := h.validate.Struct(q); err != nil {
		return queryValidationError(err)
	}

	entries, err := h.audits.List(c.UserContext(), actorFrom(c), service.AuditListInput{
		Range:  rangeQuery(q.RangeQuery),
		Action: q.Action,
		Entity: q.Entity,
		UserID: q.UserID,
		Limit:  q.Limit,
	})
	if err != nil {
		return err
	}

	out := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewAuditLogResponse(e))
	}
	return c.JSON(fiber.Map{"data": out})
}

func rangeQuery(q dto.RangeQuery) service.RangeQuery {
	return service.RangeQuery{Preset: q.Preset, StartDate: q.StartDate, EndDate: q.EndDate}
}
