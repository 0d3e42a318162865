package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kitforge-id/kitforge/internal/platform/db"
)

// Repository provides access to orders and their items.
type Repository interface {
	Create(ctx context.Context, order Order) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context, filter ListOrdersRequest) ([]OrderWithClient, int, error)
	ListActive(ctx context.Context) ([]Order, error)
	ListForProjection(ctx context.Context, clientID *int64) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to OrderStatus) error
	Complete(ctx context.Context, id int64, finalPriceCents int64, finalDays int) error
	AdjustEstimate(ctx context.Context, tx pgx.Tx, id int64, deltaCents int64, deltaDays int) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs an order repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const orderColumns = `id, client_id, status, estimated_price_cents, estimated_days, final_price_cents, final_days, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ClientID, &o.Status, &o.EstimatedPriceCents, &o.EstimatedDays, &o.FinalPriceCents, &o.FinalDays, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// Create inserts the order, its items, and their addon snapshots in one
// transaction so a failed item never leaves a half-written order behind.
func (r *repository) Create(ctx context.Context, order Order) (Order, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO orders (client_id, status, estimated_price_cents, estimated_days, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+orderColumns,
			order.ClientID, order.Status, order.EstimatedPriceCents, order.EstimatedDays, order.Notes)

		created, err := scanOrder(row)
		if err != nil {
			return fmt.Errorf("orders: insert order: %w", err)
		}

		items := make([]OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			var itemID int64
			var createdAt time.Time
			err := tx.QueryRow(ctx, `
				INSERT INTO order_items (order_id, kit_name, service_id, complexity_id, multiplier, subtotal_cents, addon_total_cents, total_cents, duration_days, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING id, created_at`,
				created.ID, item.KitName, item.ServiceID, item.ComplexityID, item.Multiplier,
				item.SubtotalCents, item.AddonTotalCents, item.TotalCents, item.DurationDays, item.Notes,
			).Scan(&itemID, &createdAt)
			if err != nil {
				return fmt.Errorf("orders: insert item %q: %w", item.KitName, err)
			}

			for _, addonID := range item.AddonIDs {
				if _, err := tx.Exec(ctx, `
					INSERT INTO order_item_addons (order_item_id, addon_id, price_cents)
					SELECT $1, id, price_cents FROM service_addons WHERE id = $2`,
					itemID, addonID); err != nil {
					return fmt.Errorf("orders: insert item addon %d: %w", addonID, err)
				}
			}

			item.ID = itemID
			item.OrderID = created.ID
			item.CreatedAt = createdAt
			items = append(items, item)
		}

		created.Items = items
		order = created
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return Order{}, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *repository) listItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.order_id, i.kit_name, i.service_id, i.complexity_id, i.multiplier,
		       i.subtotal_cents, i.addon_total_cents, i.total_cents, i.duration_days, i.notes, i.created_at,
		       COALESCE(array_agg(a.addon_id) FILTER (WHERE a.addon_id IS NOT NULL), '{}')
		FROM order_items i
		LEFT JOIN order_item_addons a ON a.order_item_id = i.id
		WHERE i.order_id = $1
		GROUP BY i.id
		ORDER BY i.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.KitName, &it.ServiceID, &it.ComplexityID, &it.Multiplier,
			&it.SubtotalCents, &it.AddonTotalCents, &it.TotalCents, &it.DurationDays, &it.Notes, &it.CreatedAt,
			&it.AddonIDs); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListOrdersRequest) ([]OrderWithClient, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where += fmt.Sprintf(` AND o.client_id = $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(` AND o.status = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT o.id, o.client_id, o.status, o.estimated_price_cents, o.estimated_days,
		       o.final_price_cents, o.final_days, o.notes, o.created_at, o.updated_at,
		       p.full_name
		FROM orders o
		JOIN profiles p ON p.id = o.client_id
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []OrderWithClient
	for rows.Next() {
		var o OrderWithClient
		if err := rows.Scan(&o.ID, &o.ClientID, &o.Status, &o.EstimatedPriceCents, &o.EstimatedDays,
			&o.FinalPriceCents, &o.FinalDays, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.ClientName); err != nil {
			return nil, 0, err
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// ListActive returns orders still in flight, for board and calendar
// projections and the due-date scan.
func (r *repository) ListActive(ctx context.Context) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE status NOT IN ('completed', 'cancelled') ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.Status, &o.EstimatedPriceCents, &o.EstimatedDays,
			&o.FinalPriceCents, &o.FinalDays, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ListForProjection returns every order visible to the client, or all orders
// when clientID is nil. Board and calendar views need terminal statuses too,
// so this does not filter by status.
func (r *repository) ListForProjection(ctx context.Context, clientID *int64) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if clientID != nil {
		query += ` WHERE client_id = $1`
		args = append(args, *clientID)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.Status, &o.EstimatedPriceCents, &o.EstimatedDays,
			&o.FinalPriceCents, &o.FinalDays, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// UpdateStatus applies the transition only when the row still carries the
// expected status, so concurrent moves cannot skip a workflow step.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to OrderStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *repository) Complete(ctx context.Context, id int64, finalPriceCents int64, finalDays int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $1, final_price_cents = $2, final_days = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		StatusCompleted, finalPriceCents, finalDays, id, StatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// AdjustEstimate shifts the estimate by the approved change request delta.
// Runs on the caller's transaction so the approval and the adjustment land
// together.
func (r *repository) AdjustEstimate(ctx context.Context, tx pgx.Tx, id int64, deltaCents int64, deltaDays int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET estimated_price_cents = estimated_price_cents + $1,
		    estimated_days = GREATEST(estimated_days + $2, 0),
		    updated_at = NOW()
		WHERE id = $3 AND status NOT IN ('completed', 'cancelled')`,
		deltaCents, deltaDays, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
