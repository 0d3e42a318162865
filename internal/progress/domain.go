// Package progress records build progress against orders. Logs are
// append-only: the studio writes them, clients read them, nothing edits them.
package progress

import (
	"errors"
	"time"
)

// ErrNotFound indicates a missing progress log.
var ErrNotFound = errors.New("progress log not found")

// Log is one append-only progress entry on an order.
type Log struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	OrderItemID *int64    `json:"order_item_id,omitempty"`
	AuthorID    int64     `json:"author_id"`
	Message     string    `json:"message"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateLogRequest appends an entry to an order.
type CreateLogRequest struct {
	OrderItemID *int64  `json:"order_item_id,omitempty" validate:"omitempty,gt=0"`
	Message     string  `json:"message" validate:"required,max=2000"`
	PhotoURL    *string `json:"photo_url,omitempty" validate:"omitempty,url,max=500"`
}
