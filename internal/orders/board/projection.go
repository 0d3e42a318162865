// Package board projects orders onto the kanban board and delivery calendar.
// Projections are pure: they take the clock and timezone as inputs so the
// handlers and the due-date scan share the exact same bucketing.
package board

import (
	"time"

	"github.com/kitforge-id/kitforge/internal/orders"
)

// Kanban column identifiers.
const (
	ColumnTodo        = "todo"
	ColumnInProgress  = "in-progress"
	ColumnCompleted   = "completed"
	ColumnUnderReview = "under-review"
)

// Calendar color identifiers.
const (
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorBlue   = "blue"
)

// Calendar urgency labels.
const (
	UrgencyCompleted = "completed"
	UrgencyOverdue   = "overdue"
	UrgencyDueToday  = "due-today"
	UrgencyUpcoming  = "upcoming"
)

// Column maps an order status to its kanban column.
func Column(status orders.OrderStatus) string {
	switch status {
	case orders.StatusApproved, orders.StatusInProgress:
		return ColumnInProgress
	case orders.StatusCompleted:
		return ColumnCompleted
	case orders.StatusCancelled:
		return ColumnUnderReview
	default:
		return ColumnTodo
	}
}

// Card is one order on the kanban board.
type Card struct {
	OrderID         int64              `json:"order_id"`
	ClientID        int64              `json:"client_id"`
	Status          orders.OrderStatus `json:"status"`
	ProgressPercent int                `json:"progress_percent"`
	TotalCents      int64              `json:"total_cents"`
	DueDate         string             `json:"due_date"`
}

// Board groups cards by column in workflow order.
type Board struct {
	Columns []BoardColumn `json:"columns"`
}

// BoardColumn is one kanban lane.
type BoardColumn struct {
	Key   string `json:"key"`
	Cards []Card `json:"cards"`
}

// Project builds the kanban board from orders. Column order is fixed so the
// client can render lanes without sorting.
func Project(list []orders.Order, loc *time.Location) Board {
	byColumn := map[string][]Card{}
	for _, o := range list {
		col := Column(o.Status)
		byColumn[col] = append(byColumn[col], Card{
			OrderID:         o.ID,
			ClientID:        o.ClientID,
			Status:          o.Status,
			ProgressPercent: orders.ProgressPercent(o.Status),
			TotalCents:      o.EstimatedPriceCents,
			DueDate:         DueDate(o, loc).Format("2006-01-02"),
		})
	}

	board := Board{}
	for _, key := range []string{ColumnTodo, ColumnInProgress, ColumnCompleted, ColumnUnderReview} {
		cards := byColumn[key]
		if cards == nil {
			cards = []Card{}
		}
		board.Columns = append(board.Columns, BoardColumn{Key: key, Cards: cards})
	}
	return board
}

// DueDate normalises the order deadline to midnight in the studio timezone.
func DueDate(o orders.Order, loc *time.Location) time.Time {
	due := o.DueDate().In(loc)
	return time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc)
}

// Entry is one order on the delivery calendar.
type Entry struct {
	OrderID         int64              `json:"order_id"`
	ClientID        int64              `json:"client_id"`
	Status          orders.OrderStatus `json:"status"`
	DueDate         string             `json:"due_date"`
	Color           string             `json:"color"`
	Urgency         string             `json:"urgency"`
	DaysUntilDue    int                `json:"days_until_due"`
	ProgressPercent int                `json:"progress_percent"`
}

// Classify assigns the calendar color and urgency for an order given the
// current time. Completed orders are green regardless of date.
func Classify(o orders.Order, now time.Time, loc *time.Location) (color, urgency string, daysUntilDue int) {
	due := DueDate(o, loc)
	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	daysUntilDue = int(due.Sub(today).Hours() / 24)

	switch {
	case o.Status == orders.StatusCompleted:
		return ColorGreen, UrgencyCompleted, daysUntilDue
	case due.Before(today):
		return ColorRed, UrgencyOverdue, daysUntilDue
	case due.Equal(today):
		return ColorOrange, UrgencyDueToday, daysUntilDue
	default:
		return ColorBlue, UrgencyUpcoming, daysUntilDue
	}
}

// Calendar projects orders onto the delivery calendar. Cancelled orders have
// no deadline and are left out.
func Calendar(list []orders.Order, now time.Time, loc *time.Location) []Entry {
	entries := make([]Entry, 0, len(list))
	for _, o := range list {
		if o.Status == orders.StatusCancelled {
			continue
		}
		color, urgency, days := Classify(o, now, loc)
		entries = append(entries, Entry{
			OrderID:         o.ID,
			ClientID:        o.ClientID,
			Status:          o.Status,
			DueDate:         DueDate(o, loc).Format("2006-01-02"),
			Color:           color,
			Urgency:         urgency,
			DaysUntilDue:    days,
			ProgressPercent: orders.ProgressPercent(o.Status),
		})
	}
	return entries
}
