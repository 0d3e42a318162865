package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kitforge-id/kitforge/internal/estimate"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// OrderService owns the order workflow: submission pricing, status moves,
// and completion.
type OrderService struct {
	repo   Repository
	source estimate.SnapshotSource
	logger *slog.Logger
}

// NewService constructs an order service.
func NewService(repo Repository, source estimate.SnapshotSource, logger *slog.Logger) *OrderService {
	return &OrderService{repo: repo, source: source, logger: logger}
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// CanView reports whether the actor may read the order.
func (a Actor) CanView(o Order) bool {
	return a.IsAdmin || o.ClientID == a.UserID
}

// Create prices every item against one catalog snapshot and persists the
// order as estimated. Drafts never hit the database; submission is the first
// server-side event.
func (s *OrderService) Create(ctx context.Context, actor Actor, req CreateOrderRequest) (Order, error) {
	clientID := actor.UserID
	if req.ClientID != nil {
		if !actor.IsAdmin {
			return Order{}, ErrNotOwner
		}
		clientID = *req.ClientID
	}

	snap, err := s.source.Snapshot(ctx, false)
	if err != nil {
		return Order{}, fmt.Errorf("orders: load catalog: %w", err)
	}

	order := Order{
		ClientID: clientID,
		Status:   StatusEstimated,
		Notes:    trimmed(req.Notes),
	}
	for i, item := range req.Items {
		line, err := estimate.PriceLine(snap, item.ServiceID, item.ComplexityID, item.AddonIDs)
		if err != nil {
			return Order{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		order.Items = append(order.Items, OrderItem{
			KitName:         strings.TrimSpace(item.KitName),
			ServiceID:       line.ServiceID,
			ComplexityID:    line.ComplexityID,
			Multiplier:      line.Multiplier,
			SubtotalCents:   line.Subtotal,
			AddonTotalCents: line.AddonTotal,
			TotalCents:      line.Total,
			DurationDays:    line.DurationDays,
			AddonIDs:        line.AddonIDs,
			Notes:           trimmed(item.Notes),
		})
		order.EstimatedPriceCents += line.Total
		order.EstimatedDays += line.DurationDays
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return Order{}, err
	}
	s.logger.Info("order created",
		slog.Int64("order_id", created.ID),
		slog.Int64("client_id", created.ClientID),
		slog.Int64("estimated_price_cents", created.EstimatedPriceCents))
	return created, nil
}

// Get returns an order the actor is allowed to see.
func (s *OrderService) Get(ctx context.Context, actor Actor, id int64) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !actor.CanView(order) {
		return Order{}, ErrNotOwner
	}
	return order, nil
}

// List returns orders visible to the actor. Clients are always scoped to
// their own orders regardless of the requested filter.
func (s *OrderService) List(ctx context.Context, actor Actor, req ListOrdersRequest) ([]OrderWithClient, shared.Pagination, error) {
	if !actor.IsAdmin {
		req.ClientID = &actor.UserID
	}
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(req.Page, req.Limit, total), nil
}

// Transition moves an order one workflow step. Clients may only cancel their
// own orders; every other move is admin-only.
func (s *OrderService) Transition(ctx context.Context, actor Actor, id int64, to OrderStatus) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !actor.CanView(order) {
		return Order{}, ErrNotOwner
	}
	if !actor.IsAdmin && to != StatusCancelled {
		return Order{}, shared.ErrForbidden
	}
	if !CanTransition(order.Status, to) {
		return Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, to)
	}

	if to == StatusCompleted {
		return s.Complete(ctx, actor, id, CompleteOrderRequest{})
	}

	if err := s.repo.UpdateStatus(ctx, id, order.Status, to); err != nil {
		return Order{}, err
	}
	s.logger.Info("order status changed",
		slog.Int64("order_id", id),
		slog.String("from", string(order.Status)),
		slog.String("to", string(to)))
	return s.repo.Get(ctx, id)
}

// Complete closes an in-progress order, defaulting final values to the
// current estimate when the caller leaves them out.
func (s *OrderService) Complete(ctx context.Context, actor Actor, id int64, req CompleteOrderRequest) (Order, error) {
	if !actor.IsAdmin {
		return Order{}, shared.ErrForbidden
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(order.Status, StatusCompleted) {
		return Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, StatusCompleted)
	}

	finalPrice := order.EstimatedPriceCents
	if req.FinalPriceCents != nil {
		finalPrice = *req.FinalPriceCents
	}
	finalDays := order.EstimatedDays
	if req.FinalDays != nil {
		finalDays = *req.FinalDays
	}

	if err := s.repo.Complete(ctx, id, finalPrice, finalDays); err != nil {
		return Order{}, err
	}
	s.logger.Info("order completed",
		slog.Int64("order_id", id),
		slog.Int64("final_price_cents", finalPrice),
		slog.Int("final_days", finalDays))
	return s.repo.Get(ctx, id)
}

// ActiveOrders lists orders still in flight, for the due-date scan.
func (s *OrderService) ActiveOrders(ctx context.Context) ([]Order, error) {
	return s.repo.ListActive(ctx)
}

// ProjectionOrders lists every order the actor may see, including terminal
// statuses, for board and calendar views.
func (s *OrderService) ProjectionOrders(ctx context.Context, actor Actor) ([]Order, error) {
	var clientID *int64
	if !actor.IsAdmin {
		clientID = &actor.UserID
	}
	return s.repo.ListForProjection(ctx, clientID)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
