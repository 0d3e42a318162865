package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kitforge-id/kitforge/internal/shared"
)

// Repository provides access to profile rows.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	Get(ctx context.Context, id int64) (*Profile, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a profile repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const profileColumns = `id, email, password_hash, full_name, role, is_active, created_at, updated_at`

func (r *repository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	return r.scanProfile(r.pool.QueryRow(ctx, query, email))
}

func (r *repository) Get(ctx context.Context, id int64) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *repository) scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
