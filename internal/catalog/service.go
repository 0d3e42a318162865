package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// CatalogService wraps catalog business rules and caching.
type CatalogService struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a catalog service.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

// Snapshot returns the full catalog, served from cache when warm. The four
// tables are fetched concurrently and joined, matching how the front end
// fans out its catalog reads.
func (s *CatalogService) Snapshot(ctx context.Context, includeInactive bool) (Snapshot, error) {
	scope := "active"
	if includeInactive {
		scope = "all"
	}
	key, err := s.cache.BuildKey(ctx, "catalog", "snapshot", scope)
	if err != nil {
		return Snapshot{}, fmt.Errorf("catalog: cache key: %w", err)
	}

	var snap Snapshot
	err = s.cache.FetchJSON(ctx, key, &snap, func(ctx context.Context) (any, error) {
		return s.loadSnapshot(ctx, includeInactive)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *CatalogService) loadSnapshot(ctx context.Context, includeInactive bool) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services, err := s.repo.ListServices(ctx, includeInactive)
		if err != nil {
			return fmt.Errorf("list services: %w", err)
		}
		snap.Services = services
		return nil
	})
	g.Go(func() error {
		levels, err := s.repo.ListComplexities(ctx, includeInactive)
		if err != nil {
			return fmt.Errorf("list complexities: %w", err)
		}
		snap.Complexities = levels
		return nil
	})
	g.Go(func() error {
		overrides, err := s.repo.ListOverrides(ctx)
		if err != nil {
			return fmt.Errorf("list overrides: %w", err)
		}
		snap.Overrides = overrides
		return nil
	})
	g.Go(func() error {
		addons, err := s.repo.ListAddons(ctx)
		if err != nil {
			return fmt.Errorf("list addons: %w", err)
		}
		snap.Addons = addons
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Warm populates the snapshot cache; used by the background warmup task.
func (s *CatalogService) Warm(ctx context.Context) error {
	if _, err := s.Snapshot(ctx, false); err != nil {
		return err
	}
	_, err := s.Snapshot(ctx, true)
	return err
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump", slog.Any("error", err))
	}
}

// ListServices lists services, optionally including inactive ones.
func (s *CatalogService) ListServices(ctx context.Context, includeInactive bool) ([]Service, error) {
	return s.repo.ListServices(ctx, includeInactive)
}

// GetService loads a single service.
func (s *CatalogService) GetService(ctx context.Context, id int64) (Service, error) {
	return s.repo.GetService(ctx, id)
}

// CreateService persists a new service.
func (s *CatalogService) CreateService(ctx context.Context, req CreateServiceRequest) (Service, error) {
	svc := Service{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		BasePriceCents: req.BasePriceCents,
		BaseDays:       req.BaseDays,
		Icon:           req.Icon,
		SortOrder:      req.SortOrder,
		IsActive:       req.IsActive,
	}
	created, err := s.repo.CreateService(ctx, svc)
	if err != nil {
		return Service{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// UpdateService persists changes to an existing service.
func (s *CatalogService) UpdateService(ctx context.Context, id int64, req UpdateServiceRequest) (Service, error) {
	svc := Service{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		BasePriceCents: req.BasePriceCents,
		BaseDays:       req.BaseDays,
		Icon:           req.Icon,
		SortOrder:      req.SortOrder,
		IsActive:       req.IsActive,
	}
	if err := s.repo.UpdateService(ctx, id, svc); err != nil {
		return Service{}, err
	}
	s.invalidate(ctx)
	return s.repo.GetService(ctx, id)
}

// DeleteService removes a service not referenced by orders.
func (s *CatalogService) DeleteService(ctx context.Context, id int64) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListComplexities lists complexity tiers.
func (s *CatalogService) ListComplexities(ctx context.Context, includeInactive bool) ([]ComplexityLevel, error) {
	return s.repo.ListComplexities(ctx, includeInactive)
}

// CreateComplexity persists a new tier.
func (s *CatalogService) CreateComplexity(ctx context.Context, req CreateComplexityRequest) (ComplexityLevel, error) {
	level := ComplexityLevel{
		Name:       strings.TrimSpace(req.Name),
		Slug:       strings.ToLower(strings.TrimSpace(req.Slug)),
		Multiplier: req.Multiplier,
		SortOrder:  req.SortOrder,
		IsActive:   req.IsActive,
	}
	created, err := s.repo.CreateComplexity(ctx, level)
	if err != nil {
		return ComplexityLevel{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// UpdateComplexity persists changes to a tier.
func (s *CatalogService) UpdateComplexity(ctx context.Context, id int64, req UpdateComplexityRequest) (ComplexityLevel, error) {
	level := ComplexityLevel{
		Name:       strings.TrimSpace(req.Name),
		Slug:       strings.ToLower(strings.TrimSpace(req.Slug)),
		Multiplier: req.Multiplier,
		SortOrder:  req.SortOrder,
		IsActive:   req.IsActive,
	}
	if err := s.repo.UpdateComplexity(ctx, id, level); err != nil {
		return ComplexityLevel{}, err
	}
	s.invalidate(ctx)
	return s.repo.GetComplexity(ctx, id)
}

// DeleteComplexity removes a tier not referenced by orders.
func (s *CatalogService) DeleteComplexity(ctx context.Context, id int64) error {
	if err := s.repo.DeleteComplexity(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpsertOverride sets a per-service multiplier override. Both rows must
// exist; the repo's FK constraints back this up.
func (s *CatalogService) UpsertOverride(ctx context.Context, serviceID, complexityID int64, multiplier *float64) error {
	if _, err := s.repo.GetService(ctx, serviceID); err != nil {
		return err
	}
	if _, err := s.repo.GetComplexity(ctx, complexityID); err != nil {
		return err
	}
	err := s.repo.UpsertOverride(ctx, ServiceComplexity{
		ServiceID:    serviceID,
		ComplexityID: complexityID,
		Multiplier:   multiplier,
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteOverride removes a per-service override.
func (s *CatalogService) DeleteOverride(ctx context.Context, serviceID, complexityID int64) error {
	if err := s.repo.DeleteOverride(ctx, serviceID, complexityID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListAddonsByService lists addons owned by one service.
func (s *CatalogService) ListAddonsByService(ctx context.Context, serviceID int64) ([]Addon, error) {
	return s.repo.ListAddonsByService(ctx, serviceID)
}

// CreateAddon persists a new addon under the given service.
func (s *CatalogService) CreateAddon(ctx context.Context, serviceID int64, req CreateAddonRequest) (Addon, error) {
	if _, err := s.repo.GetService(ctx, serviceID); err != nil {
		return Addon{}, err
	}
	addon := Addon{
		ServiceID:  serviceID,
		Name:       strings.TrimSpace(req.Name),
		PriceCents: req.PriceCents,
		IsRequired: req.IsRequired,
		IsActive:   req.IsActive,
	}
	created, err := s.repo.CreateAddon(ctx, addon)
	if err != nil {
		return Addon{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// UpdateAddon persists changes to an addon.
func (s *CatalogService) UpdateAddon(ctx context.Context, id int64, req UpdateAddonRequest) (Addon, error) {
	addon := Addon{
		Name:       strings.TrimSpace(req.Name),
		PriceCents: req.PriceCents,
		IsRequired: req.IsRequired,
		IsActive:   req.IsActive,
	}
	if err := s.repo.UpdateAddon(ctx, id, addon); err != nil {
		return Addon{}, err
	}
	s.invalidate(ctx)
	return s.repo.GetAddon(ctx, id)
}

// DeleteAddon removes an addon not referenced by order items.
func (s *CatalogService) DeleteAddon(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAddon(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}
