package orders

// CreateOrderItemRequest is one kit line at submission time.
type CreateOrderItemRequest struct {
	KitName      string  `json:"kit_name" validate:"required,max=160"`
	ServiceID    int64   `json:"service_id" validate:"required,gt=0"`
	ComplexityID int64   `json:"complexity_id" validate:"required,gt=0"`
	AddonIDs     []int64 `json:"addon_ids" validate:"dive,gt=0"`
	Notes        *string `json:"notes,omitempty"`
}

// CreateOrderRequest submits a new order. ClientID is only honoured for
// admins creating on a client's behalf.
type CreateOrderRequest struct {
	ClientID *int64                   `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Notes    *string                  `json:"notes,omitempty"`
	Items    []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateStatusRequest moves an order through the workflow. The handler only
// persists after validating the transition; the response body is the
// acknowledgment the caller commits its view state against.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=draft estimated approved in_progress completed cancelled"`
}

// CompleteOrderRequest closes out an order with final price and duration.
// Omitted values fall back to the current estimate.
type CompleteOrderRequest struct {
	FinalPriceCents *int64 `json:"final_price_cents,omitempty" validate:"omitempty,gte=0"`
	FinalDays       *int   `json:"final_days,omitempty" validate:"omitempty,gte=0"`
}

// ListOrdersRequest filters the order listing.
type ListOrdersRequest struct {
	ClientID *int64
	Status   *OrderStatus
	Page     int
	Limit    int
}
