package board

import (
	"testing"
	"time"

	"github.com/kitforge-id/kitforge/internal/orders"
)

var jakarta = mustLocation("Asia/Jakarta")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestColumnMapping(t *testing.T) {
	want := map[orders.OrderStatus]string{
		orders.StatusDraft:      ColumnTodo,
		orders.StatusEstimated:  ColumnTodo,
		orders.StatusApproved:   ColumnInProgress,
		orders.StatusInProgress: ColumnInProgress,
		orders.StatusCompleted:  ColumnCompleted,
		orders.StatusCancelled:  ColumnUnderReview,
	}
	for status, col := range want {
		if got := Column(status); got != col {
			t.Fatalf("Column(%s) = %s, want %s", status, got, col)
		}
	}
}

func TestProjectGroupsAndOrdersColumns(t *testing.T) {
	list := []orders.Order{
		{ID: 1, Status: orders.StatusDraft, CreatedAt: time.Now()},
		{ID: 2, Status: orders.StatusInProgress, CreatedAt: time.Now()},
		{ID: 3, Status: orders.StatusCancelled, CreatedAt: time.Now()},
	}
	b := Project(list, jakarta)

	if len(b.Columns) != 4 {
		t.Fatalf("columns = %d, want 4", len(b.Columns))
	}
	keys := []string{ColumnTodo, ColumnInProgress, ColumnCompleted, ColumnUnderReview}
	for i, key := range keys {
		if b.Columns[i].Key != key {
			t.Fatalf("column %d = %s, want %s", i, b.Columns[i].Key, key)
		}
	}
	if len(b.Columns[0].Cards) != 1 || b.Columns[0].Cards[0].OrderID != 1 {
		t.Fatalf("todo column cards = %+v", b.Columns[0].Cards)
	}
	if len(b.Columns[3].Cards) != 1 || b.Columns[3].Cards[0].OrderID != 3 {
		t.Fatalf("under-review column cards = %+v", b.Columns[3].Cards)
	}
	// Empty columns serialize as [] rather than null.
	if b.Columns[2].Cards == nil {
		t.Fatal("completed column cards must not be nil")
	}
}

func TestClassifyCompletedIsAlwaysGreen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, jakarta)
	o := orders.Order{
		Status:        orders.StatusCompleted,
		CreatedAt:     time.Date(2026, 1, 1, 9, 0, 0, 0, jakarta),
		EstimatedDays: 7,
	}
	color, urgency, _ := Classify(o, now, jakarta)
	if color != ColorGreen || urgency != UrgencyCompleted {
		t.Fatalf("got %s/%s, want green/completed", color, urgency)
	}
}

func TestClassifyOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 1, 0, jakarta)
	o := orders.Order{
		Status:        orders.StatusInProgress,
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, jakarta),
		EstimatedDays: 5,
	}
	color, urgency, days := Classify(o, now, jakarta)
	if color != ColorRed || urgency != UrgencyOverdue {
		t.Fatalf("got %s/%s, want red/overdue", color, urgency)
	}
	if days != -4 {
		t.Fatalf("days until due = %d, want -4", days)
	}
}

func TestClassifyDueTodayAtMidnightBoundary(t *testing.T) {
	// Due date compares at midnight: any time during the due day is orange.
	o := orders.Order{
		Status:        orders.StatusApproved,
		CreatedAt:     time.Date(2026, 3, 1, 23, 50, 0, 0, jakarta),
		EstimatedDays: 9,
	}
	for _, now := range []time.Time{
		time.Date(2026, 3, 10, 0, 0, 0, 0, jakarta),
		time.Date(2026, 3, 10, 23, 59, 59, 0, jakarta),
	} {
		color, urgency, days := Classify(o, now, jakarta)
		if color != ColorOrange || urgency != UrgencyDueToday {
			t.Fatalf("at %v got %s/%s, want orange/due-today", now, color, urgency)
		}
		if days != 0 {
			t.Fatalf("days until due = %d, want 0", days)
		}
	}
}

func TestClassifyUpcoming(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, jakarta)
	o := orders.Order{
		Status:        orders.StatusEstimated,
		CreatedAt:     time.Date(2026, 3, 8, 9, 0, 0, 0, jakarta),
		EstimatedDays: 7,
	}
	color, urgency, days := Classify(o, now, jakarta)
	if color != ColorBlue || urgency != UrgencyUpcoming {
		t.Fatalf("got %s/%s, want blue/upcoming", color, urgency)
	}
	if days != 5 {
		t.Fatalf("days until due = %d, want 5", days)
	}
}

func TestClassifyUsesFinalDaysWhenSet(t *testing.T) {
	finalDays := 2
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, jakarta)
	o := orders.Order{
		Status:        orders.StatusInProgress,
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, jakarta),
		EstimatedDays: 30,
		FinalDays:     &finalDays,
	}
	color, _, _ := Classify(o, now, jakarta)
	if color != ColorRed {
		t.Fatalf("got %s, want red when final days shorten the deadline", color)
	}
}

func TestCalendarExcludesCancelled(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, jakarta)
	list := []orders.Order{
		{ID: 1, Status: orders.StatusInProgress, CreatedAt: now, EstimatedDays: 5},
		{ID: 2, Status: orders.StatusCancelled, CreatedAt: now, EstimatedDays: 5},
	}
	entries := Calendar(list, now, jakarta)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].OrderID != 1 {
		t.Fatalf("entry order = %d, want 1", entries[0].OrderID)
	}
}
