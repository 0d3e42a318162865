package forms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to form_templates.
type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]Template, error)
	Get(ctx context.Context, id int64) (Template, error)
	Create(ctx context.Context, t Template) (Template, error)
	Update(ctx context.Context, id int64, t Template) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a form template repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, name, schema, is_active, created_at, updated_at`

func scan(row pgx.Row) (Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Schema, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrNotFound
	}
	return t, err
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]Template, error) {
	query := `SELECT ` + columns + ` FROM form_templates`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Template
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Template, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM form_templates WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, t Template) (Template, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO form_templates (name, schema, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+columns,
		t.Name, t.Schema, t.IsActive)
	return scan(row)
}

func (r *repository) Update(ctx context.Context, id int64, t Template) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE form_templates
		SET name = $1, schema = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4`,
		t.Name, t.Schema, t.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM form_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
