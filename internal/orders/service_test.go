package orders

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitforge-id/kitforge/internal/catalog"
	"github.com/kitforge-id/kitforge/internal/estimate"
	"github.com/kitforge-id/kitforge/internal/shared"
)

type mockRepo struct {
	orders map[int64]Order
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{orders: map[int64]Order{}, nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, order Order) (Order, error) {
	order.ID = m.nextID
	m.nextID++
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return order, nil
}

func (m *mockRepo) List(_ context.Context, filter ListOrdersRequest) ([]OrderWithClient, int, error) {
	var list []OrderWithClient
	for _, o := range m.orders {
		if filter.ClientID != nil && o.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		list = append(list, OrderWithClient{Order: o})
	}
	return list, len(list), nil
}

func (m *mockRepo) ListActive(_ context.Context) ([]Order, error) {
	var list []Order
	for _, o := range m.orders {
		if !o.Status.Terminal() {
			list = append(list, o)
		}
	}
	return list, nil
}

func (m *mockRepo) ListForProjection(_ context.Context, clientID *int64) ([]Order, error) {
	var list []Order
	for _, o := range m.orders {
		if clientID != nil && o.ClientID != *clientID {
			continue
		}
		list = append(list, o)
	}
	return list, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id int64, from, to OrderStatus) error {
	order, ok := m.orders[id]
	if !ok || order.Status != from {
		return ErrInvalidTransition
	}
	order.Status = to
	m.orders[id] = order
	return nil
}

func (m *mockRepo) Complete(_ context.Context, id int64, finalPriceCents int64, finalDays int) error {
	order, ok := m.orders[id]
	if !ok || order.Status != StatusInProgress {
		return ErrInvalidTransition
	}
	order.Status = StatusCompleted
	order.FinalPriceCents = &finalPriceCents
	order.FinalDays = &finalDays
	m.orders[id] = order
	return nil
}

func (m *mockRepo) AdjustEstimate(_ context.Context, _ pgx.Tx, id int64, deltaCents int64, deltaDays int) error {
	order, ok := m.orders[id]
	if !ok || order.Status.Terminal() {
		return ErrNotFound
	}
	order.EstimatedPriceCents += deltaCents
	order.EstimatedDays += deltaDays
	m.orders[id] = order
	return nil
}

type staticSnapshot struct {
	snap catalog.Snapshot
}

func (s staticSnapshot) Snapshot(context.Context, bool) (catalog.Snapshot, error) {
	return s.snap, nil
}

func testSource() estimate.SnapshotSource {
	return staticSnapshot{snap: catalog.Snapshot{
		Services: []catalog.Service{
			{ID: 1, Name: "Panel Lined Build", BasePriceCents: 500_000, BaseDays: 10, IsActive: true},
		},
		Complexities: []catalog.ComplexityLevel{
			{ID: 10, Slug: "rg", Multiplier: 1.5, IsActive: true},
		},
		Addons: []catalog.Addon{
			{ID: 100, ServiceID: 1, Name: "Top Coat", PriceCents: 50_000, IsActive: true},
		},
	}}
}

func newTestService(repo Repository) *OrderService {
	return NewService(repo, testSource(), slog.New(slog.DiscardHandler))
}

func TestCreatePricesItemsAndPersistsEstimated(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	actor := Actor{UserID: 7}
	order, err := svc.Create(context.Background(), actor, CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{KitName: "RG Nu Gundam", ServiceID: 1, ComplexityID: 10, AddonIDs: []int64{100}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusEstimated, order.Status)
	assert.Equal(t, int64(7), order.ClientID)
	assert.Equal(t, int64(800_000), order.EstimatedPriceCents)
	assert.Equal(t, 15, order.EstimatedDays)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(750_000), order.Items[0].SubtotalCents)
	assert.Equal(t, []int64{100}, order.Items[0].AddonIDs)
}

func TestCreateForOtherClientRequiresAdmin(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	other := int64(99)

	_, err := svc.Create(context.Background(), Actor{UserID: 7}, CreateOrderRequest{
		ClientID: &other,
		Items:    []CreateOrderItemRequest{{KitName: "Kit", ServiceID: 1, ComplexityID: 10}},
	})
	assert.ErrorIs(t, err, ErrNotOwner)

	order, err := svc.Create(context.Background(), Actor{UserID: 1, IsAdmin: true}, CreateOrderRequest{
		ClientID: &other,
		Items:    []CreateOrderItemRequest{{KitName: "Kit", ServiceID: 1, ComplexityID: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, other, order.ClientID)
}

func TestCreateRejectsUnknownCatalogRefs(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, err := svc.Create(context.Background(), Actor{UserID: 7}, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{KitName: "Kit", ServiceID: 42, ComplexityID: 10}},
	})
	assert.ErrorIs(t, err, estimate.ErrUnknownService)
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newMockRepo()
	repo.orders[1] = Order{ID: 1, ClientID: 7, Status: StatusEstimated}
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), Actor{UserID: 8}, 1)
	assert.ErrorIs(t, err, ErrNotOwner)

	order, err := svc.Get(context.Background(), Actor{UserID: 7}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)

	_, err = svc.Get(context.Background(), Actor{UserID: 8, IsAdmin: true}, 1)
	assert.NoError(t, err)
}

func TestListScopesClientsToOwnOrders(t *testing.T) {
	repo := newMockRepo()
	repo.orders[1] = Order{ID: 1, ClientID: 7, Status: StatusEstimated}
	repo.orders[2] = Order{ID: 2, ClientID: 8, Status: StatusEstimated}
	svc := newTestService(repo)

	other := int64(8)
	list, _, err := svc.List(context.Background(), Actor{UserID: 7}, ListOrdersRequest{ClientID: &other, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ClientID)
}

func TestTransitionAdminOnlyExceptCancel(t *testing.T) {
	repo := newMockRepo()
	repo.orders[1] = Order{ID: 1, ClientID: 7, Status: StatusEstimated}
	svc := newTestService(repo)

	_, err := svc.Transition(context.Background(), Actor{UserID: 7}, 1, StatusApproved)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	order, err := svc.Transition(context.Background(), Actor{UserID: 7}, 1, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, order.Status)
}

func TestTransitionRejectsSkips(t *testing.T) {
	repo := newMockRepo()
	repo.orders[1] = Order{ID: 1, ClientID: 7, Status: StatusEstimated}
	svc := newTestService(repo)

	_, err := svc.Transition(context.Background(), Actor{UserID: 1, IsAdmin: true}, 1, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteDefaultsFinalsToEstimate(t *testing.T) {
	repo := newMockRepo()
	repo.orders[1] = Order{ID: 1, ClientID: 7, Status: StatusInProgress, EstimatedPriceCents: 900_000, EstimatedDays: 12}
	svc := newTestService(repo)

	order, err := svc.Complete(context.Background(), Actor{UserID: 1, IsAdmin: true}, 1, CompleteOrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, order.Status)
	require.NotNil(t, order.FinalPriceCents)
	assert.Equal(t, int64(900_000), *order.FinalPriceCents)
	require.NotNil(t, order.FinalDays)
	assert.Equal(t, 12, *order.FinalDays)
}

func TestCompleteHonorsExplicitFinals(t *testing.T) {
	repo := newMockRepo()
	repo.orders[1] = Order{ID: 1, ClientID: 7, Status: StatusInProgress, EstimatedPriceCents: 900_000, EstimatedDays: 12}
	svc := newTestService(repo)

	price := int64(950_000)
	days := 14
	order, err := svc.Complete(context.Background(), Actor{UserID: 1, IsAdmin: true}, 1, CompleteOrderRequest{
		FinalPriceCents: &price,
		FinalDays:       &days,
	})
	require.NoError(t, err)
	assert.Equal(t, price, *order.FinalPriceCents)
	assert.Equal(t, days, *order.FinalDays)
}

func TestCompleteRequiresAdmin(t *testing.T) {
	repo := newMockRepo()
	repo.orders[1] = Order{ID: 1, ClientID: 7, Status: StatusInProgress}
	svc := newTestService(repo)

	_, err := svc.Complete(context.Background(), Actor{UserID: 7}, 1, CompleteOrderRequest{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestTransitionNotFound(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, err := svc.Transition(context.Background(), Actor{UserID: 1, IsAdmin: true}, 42, StatusApproved)
	assert.True(t, errors.Is(err, ErrNotFound))
}
