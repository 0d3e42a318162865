package orders

// OrderStatus is the workflow state of an order.
type OrderStatus string

const (
	StatusDraft      OrderStatus = "draft"
	StatusEstimated  OrderStatus = "estimated"
	StatusApproved   OrderStatus = "approved"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// transitions is the forward edge of the workflow. Cancellation is handled
// separately: any non-terminal status may cancel.
var transitions = map[OrderStatus]OrderStatus{
	StatusDraft:      StatusEstimated,
	StatusEstimated:  StatusApproved,
	StatusApproved:   StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusEstimated, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from may move to to in a single step.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if to == StatusCancelled {
		return !from.Terminal()
	}
	return transitions[from] == to
}

// ProgressPercent maps a status to the dashboard progress bar value.
func ProgressPercent(s OrderStatus) int {
	switch s {
	case StatusDraft:
		return 5
	case StatusEstimated:
		return 15
	case StatusApproved:
		return 30
	case StatusInProgress:
		return 65
	case StatusCompleted:
		return 100
	default:
		return 0
	}
}
