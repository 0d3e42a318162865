package progress

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to progress_logs.
type Repository interface {
	Create(ctx context.Context, log Log) (Log, error)
	ListByOrder(ctx context.Context, orderID int64) ([]Log, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a progress repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, order_id, order_item_id, author_id, message, photo_url, created_at`

func (r *repository) Create(ctx context.Context, log Log) (Log, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO progress_logs (order_id, order_item_id, author_id, message, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+columns,
		log.OrderID, log.OrderItemID, log.AuthorID, log.Message, log.PhotoURL)

	var created Log
	err := row.Scan(&created.ID, &created.OrderID, &created.OrderItemID, &created.AuthorID, &created.Message, &created.PhotoURL, &created.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Log{}, ErrNotFound
	}
	return created, err
}

func (r *repository) ListByOrder(ctx context.Context, orderID int64) ([]Log, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM progress_logs WHERE order_id = $1 ORDER BY created_at DESC, id DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.OrderID, &l.OrderItemID, &l.AuthorID, &l.Message, &l.PhotoURL, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
