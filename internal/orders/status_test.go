package orders

import "testing"

func TestCanTransitionForward(t *testing.T) {
	steps := []struct {
		from, to OrderStatus
	}{
		{StatusDraft, StatusEstimated},
		{StatusEstimated, StatusApproved},
		{StatusApproved, StatusInProgress},
		{StatusInProgress, StatusCompleted},
	}
	for _, s := range steps {
		if !CanTransition(s.from, s.to) {
			t.Fatalf("expected %s -> %s to be allowed", s.from, s.to)
		}
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	bad := []struct {
		from, to OrderStatus
	}{
		{StatusDraft, StatusApproved},
		{StatusEstimated, StatusInProgress},
		{StatusEstimated, StatusCompleted},
		{StatusApproved, StatusEstimated},
		{StatusCompleted, StatusInProgress},
		{StatusDraft, StatusDraft},
	}
	for _, s := range bad {
		if CanTransition(s.from, s.to) {
			t.Fatalf("expected %s -> %s to be rejected", s.from, s.to)
		}
	}
}

func TestCanTransitionCancel(t *testing.T) {
	for _, from := range []OrderStatus{StatusDraft, StatusEstimated, StatusApproved, StatusInProgress} {
		if !CanTransition(from, StatusCancelled) {
			t.Fatalf("expected %s -> cancelled to be allowed", from)
		}
	}
	if CanTransition(StatusCompleted, StatusCancelled) {
		t.Fatal("completed orders must not cancel")
	}
	if CanTransition(StatusCancelled, StatusCancelled) {
		t.Fatal("cancelled orders must not cancel again")
	}
}

func TestProgressPercent(t *testing.T) {
	want := map[OrderStatus]int{
		StatusDraft:      5,
		StatusEstimated:  15,
		StatusApproved:   30,
		StatusInProgress: 65,
		StatusCompleted:  100,
		StatusCancelled:  0,
	}
	for status, pct := range want {
		if got := ProgressPercent(status); got != pct {
			t.Fatalf("ProgressPercent(%s) = %d, want %d", status, got, pct)
		}
	}
}
