package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stall-admin/internal/domain"
)

// ProfileRepository handles persistence for application profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates the Postgres repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id::text, full_name, email, contact_number, role, status, stall_id::text, created_at`

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (id, full_name, email, contact_number, role, status, stall_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Email,
		profile.ContactNumber,
		profile.Role,
		profile.Status,
		profile.StallID,
	).Scan(&profile.CreatedAt)
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email=$1 LIMIT 1`, email)
}

func (r *profileRepository) getOne(ctx context.Context, query string, arg string) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&p.ContactNumber,
		&p.Role,
		&p.Status,
		&p.StallID,
		&p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
