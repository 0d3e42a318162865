package progress

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// Service owns progress log access rules: admins append, order owners read.
type Service struct {
	repo      Repository
	orderRepo orders.Repository
	logger    *slog.Logger
}

// NewService constructs a progress service.
func NewService(repo Repository, orderRepo orders.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, orderRepo: orderRepo, logger: logger}
}

// Append writes a new progress entry. Admin-only.
func (s *Service) Append(ctx context.Context, actor orders.Actor, orderID int64, req CreateLogRequest) (Log, error) {
	if !actor.IsAdmin {
		return Log{}, shared.ErrForbidden
	}
	if _, err := s.orderRepo.Get(ctx, orderID); err != nil {
		return Log{}, err
	}

	log, err := s.repo.Create(ctx, Log{
		OrderID:     orderID,
		OrderItemID: req.OrderItemID,
		AuthorID:    actor.UserID,
		Message:     strings.TrimSpace(req.Message),
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return Log{}, err
	}
	s.logger.Info("progress logged", slog.Int64("order_id", orderID), slog.Int64("log_id", log.ID))
	return log, nil
}

// ListByOrder returns the order's progress feed, newest first.
func (s *Service) ListByOrder(ctx context.Context, actor orders.Actor, orderID int64) ([]Log, error) {
	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanView(order) {
		return nil, orders.ErrNotOwner
	}
	return s.repo.ListByOrder(ctx, orderID)
}
