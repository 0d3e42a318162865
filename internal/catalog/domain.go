package catalog

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a missing catalog row.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrInUse indicates a catalog row referenced by existing orders.
	ErrInUse = errors.New("catalog entry is referenced by orders")
)

// Service is a build service offered by the studio. Prices are IDR minor
// units; durations are whole days.
type Service struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	BasePriceCents int64     `json:"base_price_cents"`
	BaseDays       int       `json:"base_days"`
	Icon           string    `json:"icon"`
	SortOrder      int       `json:"sort_order"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ComplexityLevel is a difficulty tier with a default multiplier applied to
// a service's base price and duration.
type ComplexityLevel struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Multiplier float64   `json:"multiplier"`
	SortOrder  int       `json:"sort_order"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ServiceComplexity is the per-service multiplier override join row. A nil
// Multiplier marks the tier as available without overriding the default.
type ServiceComplexity struct {
	ServiceID    int64    `json:"service_id"`
	ComplexityID int64    `json:"complexity_id"`
	Multiplier   *float64 `json:"multiplier,omitempty"`
}

// Addon is an optional or required extra line item scoped to one service.
type Addon struct {
	ID         int64     `json:"id"`
	ServiceID  int64     `json:"service_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	IsRequired bool      `json:"is_required"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot is a point-in-time read model of the whole catalog, used by the
// estimator so one quote prices every line against the same data.
type Snapshot struct {
	Services     []Service           `json:"services"`
	Complexities []ComplexityLevel   `json:"complexities"`
	Overrides    []ServiceComplexity `json:"overrides"`
	Addons       []Addon             `json:"addons"`
}

// ServiceByID looks up a service in the snapshot.
func (s Snapshot) ServiceByID(id int64) (Service, bool) {
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}

// ComplexityByID looks up a complexity tier in the snapshot.
func (s Snapshot) ComplexityByID(id int64) (ComplexityLevel, bool) {
	for _, c := range s.Complexities {
		if c.ID == id {
			return c, true
		}
	}
	return ComplexityLevel{}, false
}

// OverrideFor returns the per-service multiplier override when configured.
func (s Snapshot) OverrideFor(serviceID, complexityID int64) (float64, bool) {
	for _, o := range s.Overrides {
		if o.ServiceID == serviceID && o.ComplexityID == complexityID && o.Multiplier != nil {
			return *o.Multiplier, true
		}
	}
	return 0, false
}

// AddonsForService returns all addons owned by the service.
func (s Snapshot) AddonsForService(serviceID int64) []Addon {
	var out []Addon
	for _, a := range s.Addons {
		if a.ServiceID == serviceID {
			out = append(out, a)
		}
	}
	return out
}
