package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stall-admin/internal/daterange"
	"github.com/spec-kit/stall-admin/internal/domain"
)

// MaxAuditLimit caps audit listings.
const MaxAuditLimit = 1000

// AuditRepository persists and lists audit trail entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
}

// AuditFilter narrows an audit listing. Range applies to the timestamp column.
type AuditFilter struct {
	Range  daterange.Range
	Action *domain.AuditAction
	Entity *domain.AuditEntity
	UserID *string
	Limit  int
}

// EffectiveLimit clamps Limit into (0, MaxAuditLimit].
func (f AuditFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > MaxAuditLimit {
		return MaxAuditLimit
	}
	return f.Limit
}

type auditRepository struct {
	pool     *pgxpool.Pool
	calendar *daterange.Calendar
}

// NewAuditRepository instantiates the Postgres repository.
func NewAuditRepository(pool *pgxpool.Pool, calendar *daterange.Calendar) AuditRepository {
	return &auditRepository{pool: pool, calendar: calendar}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO audit_logs (id, action, entity, entity_id, user_id, user_name, details,
                                ip_address, user_agent, old_value, new_value, stall_id, "timestamp")
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.UserID,
		entry.UserName,
		entry.Details,
		entry.IPAddress,
		entry.UserAgent,
		entry.OldValue,
		entry.NewValue,
		entry.StallID,
		entry.Timestamp,
	)
	return err
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error) {
	query := `
        SELECT id::text, action, entity, entity_id, user_id::text, user_name, details,
               ip_address, user_agent, old_value, new_value, stall_id::text, "timestamp"
        FROM audit_logs`

	where := &SQLFilter{}
	if err := r.calendar.Apply(where, `"timestamp"`, filter.Range, daterange.TimestampColumn); err != nil {
		return nil, err
	}
	if filter.Action != nil {
		where.Eq("action", string(*filter.Action))
	}
	if filter.Entity != nil {
		where.Eq("entity", string(*filter.Entity))
	}
	if filter.UserID != nil {
		where.Eq("user_id", *filter.UserID)
	}
	query += where.Where()
	query += fmt.Sprintf(` ORDER BY "timestamp" DESC LIMIT %d`, filter.EffectiveLimit())

	rows, err := r.pool.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(
			&e.ID,
			&e.Action,
			&e.Entity,
			&e.EntityID,
			&e.UserID,
			&e.UserName,
			&e.Details,
			&e.IPAddress,
			&e.UserAgent,
			&e.OldValue,
			&e.NewValue,
			&e.StallID,
			&e.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
