package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to the catalog tables.
type Repository interface {
	ListServices(ctx context.Context, includeInactive bool) ([]Service, error)
	GetService(ctx context.Context, id int64) (Service, error)
	CreateService(ctx context.Context, svc Service) (Service, error)
	UpdateService(ctx context.Context, id int64, svc Service) error
	DeleteService(ctx context.Context, id int64) error

	ListComplexities(ctx context.Context, includeInactive bool) ([]ComplexityLevel, error)
	GetComplexity(ctx context.Context, id int64) (ComplexityLevel, error)
	CreateComplexity(ctx context.Context, level ComplexityLevel) (ComplexityLevel, error)
	UpdateComplexity(ctx context.Context, id int64, level ComplexityLevel) error
	DeleteComplexity(ctx context.Context, id int64) error

	ListOverrides(ctx context.Context) ([]ServiceComplexity, error)
	UpsertOverride(ctx context.Context, override ServiceComplexity) error
	DeleteOverride(ctx context.Context, serviceID, complexityID int64) error

	ListAddons(ctx context.Context) ([]Addon, error)
	ListAddonsByService(ctx context.Context, serviceID int64) ([]Addon, error)
	GetAddon(ctx context.Context, id int64) (Addon, error)
	CreateAddon(ctx context.Context, addon Addon) (Addon, error)
	UpdateAddon(ctx context.Context, id int64, addon Addon) error
	DeleteAddon(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a catalog repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const serviceColumns = `id, name, description, base_price_cents, base_days, icon, sort_order, is_active, created_at, updated_at`

func (r *repository) ListServices(ctx context.Context, includeInactive bool) ([]Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM service_types`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.BasePriceCents, &s.BaseDays, &s.Icon, &s.SortOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *repository) GetService(ctx context.Context, id int64) (Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM service_types WHERE id = $1`
	var s Service
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Description, &s.BasePriceCents, &s.BaseDays, &s.Icon, &s.SortOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, ErrNotFound
	}
	return s, err
}

func (r *repository) CreateService(ctx context.Context, svc Service) (Service, error) {
	query := `INSERT INTO service_types (name, description, base_price_cents, base_days, icon, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, svc.Name, svc.Description, svc.BasePriceCents, svc.BaseDays, svc.Icon, svc.SortOrder, svc.IsActive, now).Scan(&svc.ID)
	if err != nil {
		return Service{}, err
	}
	svc.CreatedAt = now
	svc.UpdatedAt = now
	return svc, nil
}

func (r *repository) UpdateService(ctx context.Context, id int64, svc Service) error {
	query := `UPDATE service_types SET name = $1, description = $2, base_price_cents = $3, base_days = $4, icon = $5, sort_order = $6, is_active = $7, updated_at = $8 WHERE id = $9`
	tag, err := r.db.Exec(ctx, query, svc.Name, svc.Description, svc.BasePriceCents, svc.BaseDays, svc.Icon, svc.SortOrder, svc.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteService(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_types WHERE id = $1`, id)
	if err != nil {
		return mapForeignKey(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const complexityColumns = `id, name, slug, multiplier, sort_order, is_active, created_at, updated_at`

func (r *repository) ListComplexities(ctx context.Context, includeInactive bool) ([]ComplexityLevel, error) {
	query := `SELECT ` + complexityColumns + ` FROM complexity_levels`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []ComplexityLevel
	for rows.Next() {
		var c ComplexityLevel
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Multiplier, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, c)
	}
	return levels, rows.Err()
}

func (r *repository) GetComplexity(ctx context.Context, id int64) (ComplexityLevel, error) {
	query := `SELECT ` + complexityColumns + ` FROM complexity_levels WHERE id = $1`
	var c ComplexityLevel
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Multiplier, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ComplexityLevel{}, ErrNotFound
	}
	return c, err
}

func (r *repository) CreateComplexity(ctx context.Context, level ComplexityLevel) (ComplexityLevel, error) {
	query := `INSERT INTO complexity_levels (name, slug, multiplier, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, level.Name, level.Slug, level.Multiplier, level.SortOrder, level.IsActive, now).Scan(&level.ID)
	if err != nil {
		return ComplexityLevel{}, err
	}
	level.CreatedAt = now
	level.UpdatedAt = now
	return level, nil
}

func (r *repository) UpdateComplexity(ctx context.Context, id int64, level ComplexityLevel) error {
	query := `UPDATE complexity_levels SET name = $1, slug = $2, multiplier = $3, sort_order = $4, is_active = $5, updated_at = $6 WHERE id = $7`
	tag, err := r.db.Exec(ctx, query, level.Name, level.Slug, level.Multiplier, level.SortOrder, level.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteComplexity(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM complexity_levels WHERE id = $1`, id)
	if err != nil {
		return mapForeignKey(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListOverrides(ctx context.Context) ([]ServiceComplexity, error) {
	rows, err := r.db.Query(ctx, `SELECT service_id, complexity_id, override_multiplier FROM service_complexities`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []ServiceComplexity
	for rows.Next() {
		var o ServiceComplexity
		if err := rows.Scan(&o.ServiceID, &o.ComplexityID, &o.Multiplier); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *repository) UpsertOverride(ctx context.Context, override ServiceComplexity) error {
	query := `INSERT INTO service_complexities (service_id, complexity_id, override_multiplier)
		VALUES ($1, $2, $3)
		ON CONFLICT (service_id, complexity_id) DO UPDATE SET override_multiplier = EXCLUDED.override_multiplier`
	_, err := r.db.Exec(ctx, query, override.ServiceID, override.ComplexityID, override.Multiplier)
	return err
}

func (r *repository) DeleteOverride(ctx context.Context, serviceID, complexityID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_complexities WHERE service_id = $1 AND complexity_id = $2`, serviceID, complexityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const addonColumns = `id, service_id, name, price_cents, is_required, is_active, created_at, updated_at`

func (r *repository) ListAddons(ctx context.Context) ([]Addon, error) {
	return r.queryAddons(ctx, `SELECT `+addonColumns+` FROM service_addons ORDER BY service_id, name`)
}

func (r *repository) ListAddonsByService(ctx context.Context, serviceID int64) ([]Addon, error) {
	return r.queryAddons(ctx, `SELECT `+addonColumns+` FROM service_addons WHERE service_id = $1 ORDER BY name`, serviceID)
}

func (r *repository) queryAddons(ctx context.Context, query string, args ...any) ([]Addon, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addons []Addon
	for rows.Next() {
		var a Addon
		if err := rows.Scan(&a.ID, &a.ServiceID, &a.Name, &a.PriceCents, &a.IsRequired, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}

func (r *repository) GetAddon(ctx context.Context, id int64) (Addon, error) {
	query := `SELECT ` + addonColumns + ` FROM service_addons WHERE id = $1`
	var a Addon
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.ServiceID, &a.Name, &a.PriceCents, &a.IsRequired, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Addon{}, ErrNotFound
	}
	return a, err
}

func (r *repository) CreateAddon(ctx context.Context, addon Addon) (Addon, error) {
	query := `INSERT INTO service_addons (service_id, name, price_cents, is_required, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, addon.ServiceID, addon.Name, addon.PriceCents, addon.IsRequired, addon.IsActive, now).Scan(&addon.ID)
	if err != nil {
		return Addon{}, err
	}
	addon.CreatedAt = now
	addon.UpdatedAt = now
	return addon, nil
}

func (r *repository) UpdateAddon(ctx context.Context, id int64, addon Addon) error {
	query := `UPDATE service_addons SET name = $1, price_cents = $2, is_required = $3, is_active = $4, updated_at = $5 WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, addon.Name, addon.PriceCents, addon.IsRequired, addon.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteAddon(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_addons WHERE id = $1`, id)
	if err != nil {
		return mapForeignKey(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapForeignKey translates FK violations into ErrInUse so handlers can
// answer 409 instead of 500 when an admin deletes a referenced row.
func mapForeignKey(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrInUse
	}
	return err
}
