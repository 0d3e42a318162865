package orders

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a missing order.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition indicates a status move outside the workflow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotOwner indicates a client touching someone else's order.
	ErrNotOwner = errors.New("order belongs to another client")
)

// Order is a commission moving through the build workflow. Estimated values
// come from the estimator at submission; final values are set at completion.
type Order struct {
	ID                  int64       `json:"id"`
	ClientID            int64       `json:"client_id"`
	Status              OrderStatus `json:"status"`
	EstimatedPriceCents int64       `json:"estimated_price_cents"`
	EstimatedDays       int         `json:"estimated_days"`
	FinalPriceCents     *int64      `json:"final_price_cents,omitempty"`
	FinalDays           *int        `json:"final_days,omitempty"`
	Notes               *string     `json:"notes,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	Items               []OrderItem `json:"items,omitempty"`
}

// OrderItem is one kit line. Pricing fields snapshot the catalog at
// submission so later catalog edits never rewrite history.
type OrderItem struct {
	ID              int64     `json:"id"`
	OrderID         int64     `json:"order_id"`
	KitName         string    `json:"kit_name"`
	ServiceID       int64     `json:"service_id"`
	ComplexityID    int64     `json:"complexity_id"`
	Multiplier      float64   `json:"multiplier"`
	SubtotalCents   int64     `json:"subtotal_cents"`
	AddonTotalCents int64     `json:"addon_total_cents"`
	TotalCents      int64     `json:"total_cents"`
	DurationDays    int       `json:"duration_days"`
	AddonIDs        []int64   `json:"addon_ids"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// OrderWithClient decorates a listing row with the client's display name.
type OrderWithClient struct {
	Order
	ClientName string `json:"client_name"`
}

// DueDate derives the order's deadline from creation date plus the estimated
// duration. Final days take precedence once set.
func (o Order) DueDate() time.Time {
	days := o.EstimatedDays
	if o.FinalDays != nil {
		days = *o.FinalDays
	}
	return o.CreatedAt.AddDate(0, 0, days)
}
