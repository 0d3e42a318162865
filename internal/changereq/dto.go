package changereq

// CreateRequest proposes a change to an order.
type CreateRequest struct {
	Description     string `json:"description" validate:"required,max=2000"`
	DeltaPriceCents int64  `json:"delta_price_cents"`
	DeltaDays       int    `json:"delta_days"`
}

// DecisionRequest approves or rejects a pending change request.
type DecisionRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}
