package handler

import (
	"context"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type wsOrderRepoMock struct{ mock.Mock }

func (m *wsOrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	panic("not used")
}

func (m *wsOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *wsOrderRepoMock) FindByIDWithRelations(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used")
}

func (m *wsOrderRepoMock) ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error) {
	panic("not used")
}

func (m *wsOrderRepoMock) ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Order, error) {
	panic("not used")
}

func (m *wsOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used")
}

func (m *wsOrderRepoMock) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	panic("not used")
}

type wsRestaurantRepoMock struct{ mock.Mock }

func (m *wsRestaurantRepoMock) Create(ctx context.Context, r model.Restaurant) (model.Restaurant, error) {
	panic("not used")
}

func (m *wsRestaurantRepoMock) FindByID(ctx context.Context, id int64) (model.Restaurant, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(model.Restaurant)
	return r, args.Error(1)
}

func (m *wsRestaurantRepoMock) FindByIDWithOwner(ctx context.Context, id int64) (model.Restaurant, error) {
	panic("not used")
}

func (m *wsRestaurantRepoMock) FindBySlug(ctx context.Context, slug string) (model.Restaurant, error) {
	panic("not used")
}

func (m *wsRestaurantRepoMock) ListActive(ctx context.Context) ([]model.Restaurant, error) {
	panic("not used")
}

func (m *wsRestaurantRepoMock) ListByOwnerID(ctx context.Context, ownerID int64) ([]model.Restaurant, error) {
	panic("not used")
}

func (m *wsRestaurantRepoMock) Update(ctx context.Context, r model.Restaurant) error {
	panic("not used")
}

func (m *wsRestaurantRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used")
}

func TestSplitChannel(t *testing.T) {
	cases := []struct {
		in       string
		wantKind string
		wantID   int64
		wantOK   bool
	}{
		{"order_42", "order", 42, true},
		{"restaurant_1", "restaurant", 1, true},
		{"user_10", "user", 10, true},
		{"order_", "", 0, false},
		{"_42", "", 0, false},
		{"order", "", 0, false},
		{"order_abc", "", 0, false},
		{"order_0", "", 0, false},
		{"order_-1", "", 0, false},
	}

	for _, c := range cases {
		kind, id, ok := splitChannel(c.in)
		assert.Equal(t, c.wantOK, ok, c.in)
		if c.wantOK {
			assert.Equal(t, c.wantKind, kind, c.in)
			assert.Equal(t, c.wantID, id, c.in)
		}
	}
}

func newWSFixture(orders *wsOrderRepoMock, restaurants *wsRestaurantRepoMock) *WSHandler {
	return NewWSHandler(config.Config{JWTSecret: "s"}, notify.NewHub(), orders, restaurants)
}

func TestAuthorizeJoin_UserChannel(t *testing.T) {
	h := newWSFixture(new(wsOrderRepoMock), new(wsRestaurantRepoMock))
	ctx := context.Background()

	self := middleware.AccessClaims{UserID: 10, Role: "customer"}
	assert.NoError(t, h.authorizeJoin(ctx, self, "user_10"))
	assert.Error(t, h.authorizeJoin(ctx, self, "user_11"))

	admin := middleware.AccessClaims{UserID: 1, Role: "admin"}
	assert.NoError(t, h.authorizeJoin(ctx, admin, "user_10"))
}

func TestAuthorizeJoin_OrderChannel(t *testing.T) {
	orders := new(wsOrderRepoMock)
	restaurants := new(wsRestaurantRepoMock)
	h := newWSFixture(orders, restaurants)
	ctx := context.Background()

	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, CustomerID: 10, RestaurantID: 1}, nil)
	restaurants.On("FindByID", mock.Anything, int64(1)).Return(model.Restaurant{ID: 1, OwnerID: 2}, nil)

	//注文者
	assert.NoError(t, h.authorizeJoin(ctx, middleware.AccessClaims{UserID: 10, Role: "customer"}, "order_42"))
	//レストランのオーナー
	assert.NoError(t, h.authorizeJoin(ctx, middleware.AccessClaims{UserID: 2, Role: "restaurant_owner"}, "order_42"))
	//無関係なユーザー
	assert.Error(t, h.authorizeJoin(ctx, middleware.AccessClaims{UserID: 99, Role: "customer"}, "order_42"))
	//admin
	assert.NoError(t, h.authorizeJoin(ctx, middleware.AccessClaims{UserID: 1, Role: "admin"}, "order_42"))
}

func TestAuthorizeJoin_RestaurantChannel(t *testing.T) {
	orders := new(wsOrderRepoMock)
	restaurants := new(wsRestaurantRepoMock)
	h := newWSFixture(orders, restaurants)
	ctx := context.Background()

	restaurants.On("FindByID", mock.Anything, int64(1)).Return(model.Restaurant{ID: 1, OwnerID: 2}, nil)

	assert.NoError(t, h.authorizeJoin(ctx, middleware.AccessClaims{UserID: 2, Role: "restaurant_owner"}, "restaurant_1"))
	assert.Error(t, h.authorizeJoin(ctx, middleware.AccessClaims{UserID: 10, Role: "customer"}, "restaurant_1"))
	assert.NoError(t, h.authorizeJoin(ctx, middleware.AccessClaims{UserID: 1, Role: "admin"}, "restaurant_1"))
}

func TestAuthorizeJoin_InvalidChannel(t *testing.T) {
	h := newWSFixture(new(wsOrderRepoMock), new(wsRestaurantRepoMock))
	ctx := context.Background()
	claims := middleware.AccessClaims{UserID: 1, Role: "admin"}

	assert.Error(t, h.authorizeJoin(ctx, claims, "kitchen_1"))
	assert.Error(t, h.authorizeJoin(ctx, claims, "order42"))
	assert.Error(t, h.authorizeJoin(ctx, claims, ""))
}
