package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stall-admin/internal/daterange"
)

// ReportRepository aggregates money movements. Both sales.sale_date and
// expenses.date are date-only columns.
type ReportRepository interface {
	SumSales(ctx context.Context, filter ReportFilter) (float64, error)
	SumExpenses(ctx context.Context, filter ReportFilter) (float64, error)
}

// ReportFilter narrows an aggregate to a civil date range and optionally a stall.
type ReportFilter struct {
	Range   daterange.Range
	StallID *string
}

type reportRepository struct {
	pool     *pgxpool.Pool
	calendar *daterange.Calendar
}

// NewReportRepository instantiates the Postgres repository.
func NewReportRepository(pool *pgxpool.Pool, calendar *daterange.Calendar) ReportRepository {
	return &reportRepository{pool: pool, calendar: calendar}
}

func (r *reportRepository) SumSales(ctx context.Context, filter ReportFilter) (float64, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(total_amount), 0)::float8 FROM sales`, "sale_date", filter)
}

func (r *reportRepository) SumExpenses(ctx context.Context, filter ReportFilter) (float64, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(cost), 0)::float8 FROM expenses`, "date", filter)
}

func (r *reportRepository) sum(ctx context.Context, query, dateColumn string, filter ReportFilter) (float64, error) {
	where := &SQLFilter{}
	if err := r.calendar.Apply(where, dateColumn, filter.Range, daterange.DateColumn); err != nil {
		return 0, err
	}
	if filter.StallID != nil {
		where.Eq("stall_id::text", *filter.StallID)
	}

	var total float64
	if err := r.pool.QueryRow(ctx, query+where.Where(), where.Args()...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
