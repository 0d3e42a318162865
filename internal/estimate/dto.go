package estimate

// QuoteItemRequest is one kit line in a quote request.
type QuoteItemRequest struct {
	KitName      string  `json:"kit_name" validate:"required,max=160"`
	ServiceID    int64   `json:"service_id" validate:"required,gt=0"`
	ComplexityID int64   `json:"complexity_id" validate:"required,gt=0"`
	AddonIDs     []int64 `json:"addon_ids" validate:"dive,gt=0"`
}

// QuoteRequest asks for a non-persisted estimate of one or more kit lines.
type QuoteRequest struct {
	Items []QuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// QuoteLine pairs the request line with its priced result.
type QuoteLine struct {
	KitName string `json:"kit_name"`
	Line
}

// Quote is the full non-persisted estimate for a prospective order.
type Quote struct {
	Lines      []QuoteLine `json:"lines"`
	TotalCents int64       `json:"total_cents"`
	TotalDays  int         `json:"total_days"`
}
