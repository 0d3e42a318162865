// Package changereq handles mid-build change requests: scoped adjustments to
// an order's estimate that must be approved before they take effect.
package changereq

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a missing change request.
	ErrNotFound = errors.New("change request not found")
	// ErrAlreadyDecided indicates a second decision on the same request.
	ErrAlreadyDecided = errors.New("change request already decided")
	// ErrOrderClosed indicates a request against a terminal order.
	ErrOrderClosed = errors.New("order no longer accepts change requests")
)

// Request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ChangeRequest is a proposed adjustment to an order. Deltas are applied to
// the order's estimate only on approval.
type ChangeRequest struct {
	ID              int64      `json:"id"`
	OrderID         int64      `json:"order_id"`
	RequestedBy     int64      `json:"requested_by"`
	Description     string     `json:"description"`
	DeltaPriceCents int64      `json:"delta_price_cents"`
	DeltaDays       int        `json:"delta_days"`
	Status          string     `json:"status"`
	DecidedBy       *int64     `json:"decided_by,omitempty"`
	DecisionNote    *string    `json:"decision_note,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
