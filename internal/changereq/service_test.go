package changereq

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/shared"
)

type mockOrderRepo struct {
	orders map[int64]orders.Order
}

func (m *mockOrderRepo) Create(context.Context, orders.Order) (orders.Order, error) {
	panic("not used")
}

func (m *mockOrderRepo) Get(_ context.Context, id int64) (orders.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(context.Context, orders.ListOrdersRequest) ([]orders.OrderWithClient, int, error) {
	panic("not used")
}

func (m *mockOrderRepo) ListActive(context.Context) ([]orders.Order, error) { panic("not used") }

func (m *mockOrderRepo) ListForProjection(context.Context, *int64) ([]orders.Order, error) {
	panic("not used")
}

func (m *mockOrderRepo) UpdateStatus(context.Context, int64, orders.OrderStatus, orders.OrderStatus) error {
	panic("not used")
}

func (m *mockOrderRepo) Complete(context.Context, int64, int64, int) error { panic("not used") }

func (m *mockOrderRepo) AdjustEstimate(_ context.Context, _ pgx.Tx, id int64, deltaCents int64, deltaDays int) error {
	o, ok := m.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.EstimatedPriceCents += deltaCents
	o.EstimatedDays += deltaDays
	m.orders[id] = o
	return nil
}

type mockCRRepo struct {
	requests map[int64]ChangeRequest
	nextID   int64
}

func newMockCRRepo() *mockCRRepo {
	return &mockCRRepo{requests: map[int64]ChangeRequest{}, nextID: 1}
}

func (m *mockCRRepo) Create(_ context.Context, cr ChangeRequest) (ChangeRequest, error) {
	cr.ID = m.nextID
	cr.Status = StatusPending
	cr.CreatedAt = time.Now()
	m.nextID++
	m.requests[cr.ID] = cr
	return cr, nil
}

func (m *mockCRRepo) Get(_ context.Context, id int64) (ChangeRequest, error) {
	cr, ok := m.requests[id]
	if !ok {
		return ChangeRequest{}, ErrNotFound
	}
	return cr, nil
}

func (m *mockCRRepo) ListByOrder(_ context.Context, orderID int64) ([]ChangeRequest, error) {
	var list []ChangeRequest
	for _, cr := range m.requests {
		if cr.OrderID == orderID {
			list = append(list, cr)
		}
	}
	return list, nil
}

func (m *mockCRRepo) ListPending(_ context.Context) ([]ChangeRequest, error) {
	var list []ChangeRequest
	for _, cr := range m.requests {
		if cr.Status == StatusPending {
			list = append(list, cr)
		}
	}
	return list, nil
}

func (m *mockCRRepo) Decide(_ context.Context, _ pgx.Tx, id int64, status string, decidedBy int64, note *string, at time.Time) error {
	cr, ok := m.requests[id]
	if !ok || cr.Status != StatusPending {
		return ErrAlreadyDecided
	}
	cr.Status = status
	cr.DecidedBy = &decidedBy
	cr.DecisionNote = note
	cr.DecidedAt = &at
	m.requests[id] = cr
	return nil
}

func newTestService(orderRepo *mockOrderRepo, crRepo *mockCRRepo) *Service {
	return NewService(nil, crRepo, orderRepo, slog.New(slog.DiscardHandler))
}

func TestCreateRequiresOrderOwnership(t *testing.T) {
	orderRepo := &mockOrderRepo{orders: map[int64]orders.Order{
		1: {ID: 1, ClientID: 7, Status: orders.StatusApproved},
	}}
	svc := newTestService(orderRepo, newMockCRRepo())

	_, err := svc.Create(context.Background(), orders.Actor{UserID: 8}, 1, CreateRequest{Description: "swap colors"})
	assert.ErrorIs(t, err, orders.ErrNotOwner)

	cr, err := svc.Create(context.Background(), orders.Actor{UserID: 7}, 1, CreateRequest{
		Description:     "swap colors",
		DeltaPriceCents: 150_000,
		DeltaDays:       3,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, cr.Status)
	assert.Equal(t, int64(7), cr.RequestedBy)
}

func TestCreateRejectsTerminalOrders(t *testing.T) {
	orderRepo := &mockOrderRepo{orders: map[int64]orders.Order{
		1: {ID: 1, ClientID: 7, Status: orders.StatusCompleted},
	}}
	svc := newTestService(orderRepo, newMockCRRepo())

	_, err := svc.Create(context.Background(), orders.Actor{UserID: 7}, 1, CreateRequest{Description: "too late"})
	assert.ErrorIs(t, err, ErrOrderClosed)
}

func TestListPendingRequiresAdmin(t *testing.T) {
	svc := newTestService(&mockOrderRepo{orders: map[int64]orders.Order{}}, newMockCRRepo())

	_, err := svc.ListPending(context.Background(), orders.Actor{UserID: 7})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc := newTestService(&mockOrderRepo{orders: map[int64]orders.Order{}}, newMockCRRepo())

	_, err := svc.Approve(context.Background(), orders.Actor{UserID: 7}, 1, DecisionRequest{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestApproveRejectsDecidedRequests(t *testing.T) {
	crRepo := newMockCRRepo()
	crRepo.requests[1] = ChangeRequest{ID: 1, OrderID: 1, Status: StatusRejected}
	svc := newTestService(&mockOrderRepo{orders: map[int64]orders.Order{}}, crRepo)

	_, err := svc.Approve(context.Background(), orders.Actor{UserID: 1, IsAdmin: true}, 1, DecisionRequest{})
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}
