package changereq

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to change_requests.
type Repository interface {
	Create(ctx context.Context, cr ChangeRequest) (ChangeRequest, error)
	Get(ctx context.Context, id int64) (ChangeRequest, error)
	ListByOrder(ctx context.Context, orderID int64) ([]ChangeRequest, error)
	ListPending(ctx context.Context) ([]ChangeRequest, error)
	Decide(ctx context.Context, tx pgx.Tx, id int64, status string, decidedBy int64, note *string, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a change request repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, order_id, requested_by, description, delta_price_cents, delta_days, status, decided_by, decision_note, decided_at, created_at`

func scan(row pgx.Row) (ChangeRequest, error) {
	var cr ChangeRequest
	err := row.Scan(&cr.ID, &cr.OrderID, &cr.RequestedBy, &cr.Description, &cr.DeltaPriceCents, &cr.DeltaDays,
		&cr.Status, &cr.DecidedBy, &cr.DecisionNote, &cr.DecidedAt, &cr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChangeRequest{}, ErrNotFound
	}
	return cr, err
}

func (r *repository) Create(ctx context.Context, cr ChangeRequest) (ChangeRequest, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO change_requests (order_id, requested_by, description, delta_price_cents, delta_days, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+columns,
		cr.OrderID, cr.RequestedBy, cr.Description, cr.DeltaPriceCents, cr.DeltaDays, StatusPending)
	return scan(row)
}

func (r *repository) Get(ctx context.Context, id int64) (ChangeRequest, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM change_requests WHERE id = $1`, id))
}

func (r *repository) ListByOrder(ctx context.Context, orderID int64) ([]ChangeRequest, error) {
	return r.list(ctx, `SELECT `+columns+` FROM change_requests WHERE order_id = $1 ORDER BY created_at DESC`, orderID)
}

func (r *repository) ListPending(ctx context.Context) ([]ChangeRequest, error) {
	return r.list(ctx, `SELECT `+columns+` FROM change_requests WHERE status = $1 ORDER BY created_at`, StatusPending)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]ChangeRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ChangeRequest
	for rows.Next() {
		cr, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cr)
	}
	return list, rows.Err()
}

// Decide flips a pending request to its final status on the caller's
// transaction. The status guard makes double decisions a no-op at the row
// level; callers translate zero rows into ErrAlreadyDecided.
func (r *repository) Decide(ctx context.Context, tx pgx.Tx, id int64, status string, decidedBy int64, note *string, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE change_requests
		SET status = $1, decided_by = $2, decision_note = $3, decided_at = $4
		WHERE id = $5 AND status = $6`,
		status, decidedBy, note, at, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}
