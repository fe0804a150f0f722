package service

import (
	"context"
	"strings"

	"github.com/spec-kit/stall-admin/internal/daterange"
	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/repository"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

// RangeQuery is the caller-supplied date selection. A known preset wins over
// explicit dates.
type RangeQuery struct {
	Preset    string
	StartDate string
	EndDate   string
}

// resolveRange turns a RangeQuery into a concrete civil range.
func resolveRange(cal *daterange.Calendar, q RangeQuery) (daterange.Range, error) {
	if name := strings.TrimSpace(q.Preset); name != "" {
		p, ok := daterange.ParsePreset(name)
		if !ok {
			return daterange.Range{}, apperrors.NewValidationError("Unknown date preset: " + name)
		}
		if p != daterange.Custom {
			return cal.Resolve(p), nil
		}
	}
	return daterange.Range{
		StartDate: daterange.CivilDate(q.StartDate),
		EndDate:   daterange.CivilDate(q.EndDate),
	}, validateShape(q)
}

// validateShape rejects values CivilDate would silently drop.
func validateShape(q RangeQuery) error {
	for _, v := range []string{q.StartDate, q.EndDate} {
		if v != "" && daterange.CivilDate(v) == "" {
			return apperrors.NewValidationError("Invalid date format, expected YYYY-MM-DD")
		}
	}
	return nil
}

// ReportService computes sales and expense totals.
type ReportService struct {
	reports      repository.ReportRepository
	calendar     *daterange.Calendar
	maxRangeDays int
}

// NewReportService constructs the service.
func NewReportService(reports repository.ReportRepository, calendar *daterange.Calendar, maxRangeDays int) *ReportService {
	return &ReportService{reports: reports, calendar: calendar, maxRangeDays: maxRangeDays}
}

// SummaryInput selects what to aggregate.
type SummaryInput struct {
	Range   RangeQuery
	StallID string
}

// Summary is the aggregate returned to callers.
type Summary struct {
	Range         daterange.Range
	StallID       *string
	SalesTotal    float64
	ExpensesTotal float64
}

// Net is sales minus expenses.
func (s Summary) Net() float64 {
	return s.SalesTotal - s.ExpensesTotal
}

// Summary aggregates for caller. Staff are pinned to their own stall and
// to today regardless of what they asked for.
func (s *ReportService) Summary(ctx context.Context, caller *domain.Profile, input SummaryInput) (*Summary, error) {
	if caller == nil {
		return nil, apperrors.NewForbidden()
	}

	var (
		rng     daterange.Range
		stallID *string
	)
	if caller.IsAdmin() {
		var err error
		if rng, err = resolveRange(s.calendar, input.Range); err != nil {
			return nil, err
		}
		if v := s.calendar.Validate(rng, daterange.ValidateOptions{MaxDays: s.maxRangeDays}); !v.Valid {
			return nil, apperrors.NewValidationError(v.Reason)
		}
		if id := strings.TrimSpace(input.StallID); id != "" {
			stallID = &id
		}
	} else {
		if caller.StallID == nil || *caller.StallID == "" {
			return nil, apperrors.NewForbidden()
		}
		rng = s.calendar.Resolve(daterange.Today)
		stallID = caller.StallID
	}

	filter := repository.ReportFilter{Range: rng, StallID: stallID}
	sales, err := s.reports.SumSales(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	expenses, err := s.reports.SumExpenses(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &Summary{Range: rng, StallID: stallID, SalesTotal: sales, ExpensesTotal: expenses}, nil
}
