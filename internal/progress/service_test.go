package progress

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

func (m *mockOrderRepo) AdjustEstimate(context.Context, pgx.Tx, int64, int64, int) error {
	panic("not used")
}

type mockLogRepo struct {
	logs   []Log
	nextID int64
}

func (m *mockLogRepo) Create(_ context.Context, log Log) (Log, error) {
	m.nextID++
	log.ID = m.nextID
	log.CreatedAt = time.Now()
	m.logs = append([]Log{log}, m.logs...)
	return log, nil
}

func (m *mockLogRepo) ListByOrder(_ context.Context, orderID int64) ([]Log, error) {
	var out []Log
	for _, l := range m.logs {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func newTestService(orderRepo *mockOrderRepo) (*Service, *mockLogRepo) {
	logRepo := &mockLogRepo{}
	return NewService(logRepo, orderRepo, slog.New(slog.DiscardHandler)), logRepo
}

func TestAppendRequiresAdmin(t *testing.T) {
	orderRepo := &mockOrderRepo{orders: map[int64]orders.Order{
		1: {ID: 1, ClientID: 7, Status: orders.StatusInProgress},
	}}
	svc, _ := newTestService(orderRepo)

	_, err := svc.Append(context.Background(), orders.Actor{UserID: 7}, 1, CreateLogRequest{Message: "progress"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	log, err := svc.Append(context.Background(), orders.Actor{UserID: 1, IsAdmin: true}, 1, CreateLogRequest{Message: "  panel lining done  "})
	require.NoError(t, err)
	assert.Equal(t, "panel lining done", log.Message)
	assert.Equal(t, int64(1), log.AuthorID)
}

func TestAppendUnknownOrder(t *testing.T) {
	svc, _ := newTestService(&mockOrderRepo{orders: map[int64]orders.Order{}})

	_, err := svc.Append(context.Background(), orders.Actor{UserID: 1, IsAdmin: true}, 42, CreateLogRequest{Message: "progress"})
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestListByOrderEnforcesOwnership(t *testing.T) {
	orderRepo := &mockOrderRepo{orders: map[int64]orders.Order{
		1: {ID: 1, ClientID: 7, Status: orders.StatusInProgress},
	}}
	svc, logRepo := newTestService(orderRepo)
	logRepo.logs = []Log{{ID: 1, OrderID: 1, AuthorID: 1, Message: "started"}}

	_, err := svc.ListByOrder(context.Background(), orders.Actor{UserID: 8}, 1)
	assert.ErrorIs(t, err, orders.ErrNotOwner)

	list, err := svc.ListByOrder(context.Background(), orders.Actor{UserID: 7}, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
