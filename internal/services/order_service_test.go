package services_test

import (
	"context"
	"errors"
	"testing"

	"lavanderia/internal/models"
	"lavanderia/internal/orderstatus"
	"lavanderia/internal/pricing"
	"lavanderia/internal/repositories"
	"lavanderia/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	customer = services.Actor{ID: "cust-1", Role: models.RoleCustomer}
	admin    = services.Actor{ID: "admin-1", Role: models.RoleAdmin}
	operator = services.Actor{ID: "op-1", Role: models.RoleOperator}
)

func washService(t *testing.T, active bool) *models.Service {
	t.Helper()
	model, raw, err := pricing.Encode(&pricing.FixedPackageWithAddons{
		BasePrice: decimal.NewFromInt(800),
		Addons:    map[string]decimal.Decimal{"planchado": decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	return &models.Service{ID: "svc-1", Name: "Lavado", PricingModel: model, Pricing: raw, Active: active}
}

type orderFixture struct {
	orders    *MockOrderRepository
	catalog   *MockServiceRepository
	users     *MockUserRepository
	publisher *MockPublisher
	svc       *services.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(MockOrderRepository),
		catalog:   new(MockServiceRepository),
		users:     new(MockUserRepository),
		publisher: new(MockPublisher),
	}
	f.svc = services.NewOrderService(f.orders, f.catalog, f.users, f.publisher)
	return f
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.catalog.On("GetByID", mock.Anything, "svc-1").Return(washService(t, true), nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	f.publisher.On("Publish", services.EventOrderCreated, mock.AnythingOfType("services.OrderEvent")).Return(nil).Once()

	order, err := f.svc.CreateOrder(ctx, customer, services.CreateOrderInput{
		ServiceID:    "svc-1",
		Detail:       models.Selection{Addons: []string{"planchado"}},
		Observations: "sin suavizante",
	})
	require.NoError(t, err)
	assert.Equal(t, "cust-1", order.CustomerID)
	assert.Equal(t, orderstatus.Initial, order.Status)
	assert.True(t, order.EstimatedPrice.Equal(decimal.NewFromInt(900)), "got %s", order.EstimatedPrice)
	assert.Equal(t, "Lavado", order.Service.Name)
	assert.Equal(t, []string{"planchado"}, order.Detail.Data().Addons)
	assert.True(t, order.Active)
	assert.Equal(t, 1, order.Version)

	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestOrderService_CreateOrder_PublishFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture()
	f.catalog.On("GetByID", mock.Anything, "svc-1").Return(washService(t, true), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := f.svc.CreateOrder(context.Background(), customer, services.CreateOrderInput{ServiceID: "svc-1"})
	assert.NoError(t, err)
}

func TestOrderService_CreateOrder_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("inactive service", func(t *testing.T) {
		f := newOrderFixture()
		f.catalog.On("GetByID", mock.Anything, "svc-1").Return(washService(t, false), nil)

		_, err := f.svc.CreateOrder(ctx, customer, services.CreateOrderInput{ServiceID: "svc-1"})
		assert.ErrorIs(t, err, services.ErrServiceUnavailable)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown service", func(t *testing.T) {
		f := newOrderFixture()
		f.catalog.On("GetByID", mock.Anything, "nope").Return(nil, notFound("service nope"))

		_, err := f.svc.CreateOrder(ctx, customer, services.CreateOrderInput{ServiceID: "nope"})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("customer ordering for someone else", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(ctx, customer, services.CreateOrderInput{CustomerID: "cust-2", ServiceID: "svc-1"})
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("operators cannot place orders", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(ctx, operator, services.CreateOrderInput{ServiceID: "svc-1"})
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("admin without customer id", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(ctx, admin, services.CreateOrderInput{ServiceID: "svc-1"})
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("invalid selection", func(t *testing.T) {
		f := newOrderFixture()
		model, raw, err := pricing.Encode(&pricing.SingleOption{
			Options: map[string]decimal.Decimal{"express": decimal.NewFromInt(1200)},
		})
		require.NoError(t, err)
		f.catalog.On("GetByID", mock.Anything, "svc-2").
			Return(&models.Service{ID: "svc-2", PricingModel: model, Pricing: raw, Active: true}, nil)

		_, err = f.svc.CreateOrder(ctx, customer, services.CreateOrderInput{ServiceID: "svc-2"})
		assert.ErrorIs(t, err, pricing.ErrInvalidSelection)
	})
}

func TestOrderService_CreateOrder_OnBehalfOfCustomer(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.users.On("GetByID", mock.Anything, "cust-2").
		Return(&models.User{ID: "cust-2", Role: models.RoleCustomer, Active: true}, nil).Once()
	f.catalog.On("GetByID", mock.Anything, "svc-1").Return(washService(t, true), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", services.EventOrderCreated, mock.Anything).Return(nil)

	order, err := f.svc.CreateOrder(ctx, admin, services.CreateOrderInput{CustomerID: "cust-2", ServiceID: "svc-1"})
	require.NoError(t, err)
	assert.Equal(t, "cust-2", order.CustomerID)
	assert.True(t, order.EstimatedPrice.Equal(decimal.NewFromInt(800)))

	// staff accounts are not valid order owners
	f.users.On("GetByID", mock.Anything, "op-1").
		Return(&models.User{ID: "op-1", Role: models.RoleOperator, Active: true}, nil).Once()
	_, err = f.svc.CreateOrder(ctx, admin, services.CreateOrderInput{CustomerID: "op-1", ServiceID: "svc-1"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestOrderService_ListOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.orders.On("List", mock.Anything, repositories.OrderFilter{CustomerID: "cust-1"}).Return([]models.Order{{ID: "o1"}}, nil).Once()
	f.orders.On("List", mock.Anything, repositories.OrderFilter{Status: models.StatusPending}).Return([]models.Order{{ID: "o1"}, {ID: "o2"}}, nil).Once()

	mine, err := f.svc.ListOrders(ctx, customer, "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.svc.ListOrders(ctx, operator, "pending")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.ListOrders(ctx, operator, "received")
	assert.ErrorIs(t, err, orderstatus.ErrInvalidStatus)

	f.orders.AssertExpectations(t)
}

func TestOrderService_GetOrder_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(&models.Order{ID: "o1", CustomerID: "cust-2"}, nil)

	_, err := f.svc.GetOrder(ctx, customer, "o1")
	assert.ErrorIs(t, err, services.ErrForbidden)

	order, err := f.svc.GetOrder(ctx, operator, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("customer cancels a pending order", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusPending, Version: 1}, nil).Once()
		f.orders.On("UpdateStatus", mock.Anything, "o1", 1, models.StatusCancelled).Return(nil).Once()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusCancelled, Version: 2}, nil).Once()
		f.publisher.On("Publish", services.EventOrderStatusChanged, mock.MatchedBy(func(e services.OrderEvent) bool {
			return e.PreviousStatus == models.StatusPending && e.Status == models.StatusCancelled && e.ChangedBy == "cust-1"
		})).Return(nil).Once()

		order, err := f.svc.CancelOrder(ctx, customer, "o1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, order.Status)
		assert.Equal(t, 2, order.Version)
		f.orders.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("customer cannot cancel an order in progress", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusInProgress, Version: 3}, nil)

		_, err := f.svc.CancelOrder(ctx, customer, "o1")
		assert.ErrorIs(t, err, orderstatus.ErrInvalidTransition)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("customer cannot move orders forward", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusPending, Version: 1}, nil)

		_, err := f.svc.UpdateStatus(ctx, customer, "o1", services.UpdateStatusInput{Status: "in_progress"})
		assert.ErrorIs(t, err, orderstatus.ErrInvalidTransition)
	})

	t.Run("operator reopens a cancelled order", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusCancelled, Version: 4}, nil).Once()
		f.orders.On("UpdateStatus", mock.Anything, "o1", 4, models.StatusPending).Return(nil).Once()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusPending, Version: 5}, nil).Once()
		f.publisher.On("Publish", services.EventOrderStatusChanged, mock.Anything).Return(nil)

		order, err := f.svc.UpdateStatus(ctx, operator, "o1", services.UpdateStatusInput{Status: "pending"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, order.Status)
	})

	t.Run("stale version from the caller", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusPending, Version: 2}, nil)

		stale := 1
		_, err := f.svc.UpdateStatus(ctx, admin, "o1", services.UpdateStatusInput{Status: "in_progress", Version: &stale})
		assert.ErrorIs(t, err, repositories.ErrVersionConflict)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent write wins the swap", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, "o1").
			Return(&models.Order{ID: "o1", CustomerID: "cust-1", Status: models.StatusPending, Version: 2}, nil)
		f.orders.On("UpdateStatus", mock.Anything, "o1", 2, models.StatusInProgress).Return(repositories.ErrVersionConflict)

		_, err := f.svc.UpdateStatus(ctx, operator, "o1", services.UpdateStatusInput{Status: "in_progress"})
		assert.ErrorIs(t, err, repositories.ErrVersionConflict)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.UpdateStatus(ctx, admin, "o1", services.UpdateStatusInput{Status: "lost"})
		assert.ErrorIs(t, err, orderstatus.ErrInvalidStatus)
	})
}

func TestOrderService_DeactivateOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("Deactivate", mock.Anything, "o1").Return(nil).Once()

	assert.ErrorIs(t, f.svc.DeactivateOrder(ctx, operator, "o1"), services.ErrForbidden)
	assert.NoError(t, f.svc.DeactivateOrder(ctx, admin, "o1"))
	f.orders.AssertExpectations(t)
}

func TestOrderService_NilPublisher(t *testing.T) {
	orders := new(MockOrderRepository)
	catalog := new(MockServiceRepository)
	svc := services.NewOrderService(orders, catalog, new(MockUserRepository), nil)

	catalog.On("GetByID", mock.Anything, "svc-1").Return(washService(t, true), nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateOrder(context.Background(), customer, services.CreateOrderInput{ServiceID: "svc-1"})
	assert.NoError(t, err)
}
