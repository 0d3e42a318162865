package catalog

// CreateServiceRequest carries the admin form payload for a new service.
type CreateServiceRequest struct {
	Name           string `json:"name" validate:"required,max=120"`
	Description    string `json:"description" validate:"max=2000"`
	BasePriceCents int64  `json:"base_price_cents" validate:"gte=0"`
	BaseDays       int    `json:"base_days" validate:"gt=0"`
	Icon           string `json:"icon" validate:"max=64"`
	SortOrder      int    `json:"sort_order" validate:"gte=0"`
	IsActive       bool   `json:"is_active"`
}

// UpdateServiceRequest mirrors CreateServiceRequest for full updates.
type UpdateServiceRequest = CreateServiceRequest

// CreateComplexityRequest carries a new complexity tier.
type CreateComplexityRequest struct {
	Name       string  `json:"name" validate:"required,max=80"`
	Slug       string  `json:"slug" validate:"required,max=80"`
	Multiplier float64 `json:"multiplier" validate:"gt=0"`
	SortOrder  int     `json:"sort_order" validate:"gte=0"`
	IsActive   bool    `json:"is_active"`
}

// UpdateComplexityRequest mirrors CreateComplexityRequest.
type UpdateComplexityRequest = CreateComplexityRequest

// UpsertOverrideRequest sets or clears a per-service multiplier override.
// A nil multiplier keeps the tier available at the global default.
type UpsertOverrideRequest struct {
	Multiplier *float64 `json:"multiplier" validate:"omitempty,gt=0"`
}

// CreateAddonRequest carries a new addon scoped to one service.
type CreateAddonRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	IsRequired bool   `json:"is_required"`
	IsActive   bool   `json:"is_active"`
}

// UpdateAddonRequest mirrors CreateAddonRequest.
type UpdateAddonRequest = CreateAddonRequest
