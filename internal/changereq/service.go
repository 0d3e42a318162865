package changereq

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/platform/db"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// Service owns the change request lifecycle.
type Service struct {
	pool      *pgxpool.Pool
	repo      Repository
	orderRepo orders.Repository
	logger    *slog.Logger
}

// NewService constructs a change request service.
func NewService(pool *pgxpool.Pool, repo Repository, orderRepo orders.Repository, logger *slog.Logger) *Service {
	return &Service{pool: pool, repo: repo, orderRepo: orderRepo, logger: logger}
}

// Create files a change request against an order. Clients may only file
// against their own orders, and terminal orders accept no requests.
func (s *Service) Create(ctx context.Context, actor orders.Actor, orderID int64, req CreateRequest) (ChangeRequest, error) {
	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return ChangeRequest{}, err
	}
	if !actor.CanView(order) {
		return ChangeRequest{}, orders.ErrNotOwner
	}
	if order.Status.Terminal() {
		return ChangeRequest{}, ErrOrderClosed
	}

	cr, err := s.repo.Create(ctx, ChangeRequest{
		OrderID:         orderID,
		RequestedBy:     actor.UserID,
		Description:     strings.TrimSpace(req.Description),
		DeltaPriceCents: req.DeltaPriceCents,
		DeltaDays:       req.DeltaDays,
	})
	if err != nil {
		return ChangeRequest{}, err
	}
	s.logger.Info("change request filed",
		slog.Int64("change_request_id", cr.ID),
		slog.Int64("order_id", orderID),
		slog.Int64("delta_price_cents", cr.DeltaPriceCents))
	return cr, nil
}

// ListByOrder returns the order's change requests for anyone allowed to see
// the order.
func (s *Service) ListByOrder(ctx context.Context, actor orders.Actor, orderID int64) ([]ChangeRequest, error) {
	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanView(order) {
		return nil, orders.ErrNotOwner
	}
	return s.repo.ListByOrder(ctx, orderID)
}

// ListPending returns the admin review queue.
func (s *Service) ListPending(ctx context.Context, actor orders.Actor) ([]ChangeRequest, error) {
	if !actor.IsAdmin {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListPending(ctx)
}

// Approve accepts a pending request and folds its deltas into the order's
// estimate. Both writes happen in one transaction: the request can never be
// marked approved without the order moving, or vice versa.
func (s *Service) Approve(ctx context.Context, actor orders.Actor, id int64, req DecisionRequest) (ChangeRequest, error) {
	if !actor.IsAdmin {
		return ChangeRequest{}, shared.ErrForbidden
	}
	cr, err := s.repo.Get(ctx, id)
	if err != nil {
		return ChangeRequest{}, err
	}
	if cr.Status != StatusPending {
		return ChangeRequest{}, ErrAlreadyDecided
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.repo.Decide(ctx, tx, id, StatusApproved, actor.UserID, req.Note, time.Now()); err != nil {
			return err
		}
		return s.orderRepo.AdjustEstimate(ctx, tx, cr.OrderID, cr.DeltaPriceCents, cr.DeltaDays)
	})
	if err != nil {
		return ChangeRequest{}, err
	}

	s.logger.Info("change request approved",
		slog.Int64("change_request_id", id),
		slog.Int64("order_id", cr.OrderID),
		slog.Int64("delta_price_cents", cr.DeltaPriceCents),
		slog.Int("delta_days", cr.DeltaDays))
	return s.repo.Get(ctx, id)
}

// Reject declines a pending request without touching the order.
func (s *Service) Reject(ctx context.Context, actor orders.Actor, id int64, req DecisionRequest) (ChangeRequest, error) {
	if !actor.IsAdmin {
		return ChangeRequest{}, shared.ErrForbidden
	}
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return s.repo.Decide(ctx, tx, id, StatusRejected, actor.UserID, req.Note, time.Now())
	})
	if err != nil {
		return ChangeRequest{}, err
	}
	s.logger.Info("change request rejected", slog.Int64("change_request_id", id))
	return s.repo.Get(ctx, id)
}
