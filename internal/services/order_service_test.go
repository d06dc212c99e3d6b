package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"ExamPrepAPI/internal/model"
	"ExamPrepAPI/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderStore struct {
	orders      []*model.Order
	deleteCalls int
}

func (f *fakeOrderStore) Create(_ context.Context, order *model.Order) error {
	order.OrderID = uuid.New()
	order.OrderNumber = repository.FormatOrderNumber(order.PurchaseDate, len(f.orders)+1)
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderStore) List(_ context.Context, userID *uuid.UUID) ([]model.Order, error) {
	out := []model.Order{}
	for _, o := range f.orders {
		if userID != nil && o.UserID != *userID {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderStore) DeleteBatch(_ context.Context, ids []uuid.UUID) (int64, error) {
	f.deleteCalls++
	return int64(len(ids)), nil
}

func newOrderFixture(role string) (*OrderService, uuid.UUID, *fakeOrderStore, *fakeProfileStore) {
	authID := uuid.New()
	users := &fakeProfileStore{profile: &model.User{
		UserID:       uuid.New(),
		AuthID:       authID,
		Email:        "buyer@example.com",
		Role:         role,
		Subscription: model.SubscriptionNo,
	}}
	store := &fakeOrderStore{}
	svc := NewOrderService(store, users, &fakePublisher{}, zerolog.Nop())
	return svc, authID, store, users
}

func validOrderInput(userID string) CreateOrderInput {
	return CreateOrderInput{
		UserID: userID,
		Items: []OrderItemInput{
			{ID: uuid.NewString(), Title: "SAP ABAP Dumps", Price: decimal.RequireFromString("999"), Quantity: 1},
			{ID: uuid.NewString(), Title: "SAP FI Exam", Price: decimal.RequireFromString("500"), Quantity: 2},
		},
		TotalAmount:   decimal.RequireFromString("1999"),
		PaymentMethod: "razorpay",
		PaymentID:     "pay_123",
	}
}

func TestCreateOrder_Success(t *testing.T) {
	svc, authID, store, _ := newOrderFixture(model.RoleGuest)

	res, err := svc.CreateOrder(context.Background(), authID, validOrderInput(authID.String()))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{8}\d{4}$`), res.OrderNumber)
	assert.Equal(t, time.Now().Format("20060102"), res.OrderNumber[:8])

	require.Len(t, store.orders, 1)
	o := store.orders[0]
	assert.Equal(t, model.OrderStatusCompleted, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("1999")))
	require.Len(t, o.Items, 2)
	assert.Equal(t, "SAP ABAP Dumps", o.Items[0].Title)
}

func TestCreateOrder_NumbersIncreaseWithinDay(t *testing.T) {
	svc, authID, _, _ := newOrderFixture(model.RoleGuest)

	var prev string
	for i := 0; i < 3; i++ {
		res, err := svc.CreateOrder(context.Background(), authID, validOrderInput(authID.String()))
		require.NoError(t, err)
		if prev != "" {
			assert.Greater(t, res.OrderNumber, prev)
		}
		prev = res.OrderNumber
	}
}

func TestCreateOrder_IdentityMismatch(t *testing.T) {
	svc, authID, store, _ := newOrderFixture(model.RoleGuest)

	_, err := svc.CreateOrder(context.Background(), authID, validOrderInput(uuid.NewString()))
	require.Error(t, err)
	assert.Equal(t, 403, HTTPStatus(err))
	assert.Empty(t, store.orders)
}

func TestCreateOrder_MissingFields(t *testing.T) {
	svc, authID, _, _ := newOrderFixture(model.RoleGuest)

	in := validOrderInput(authID.String())
	in.PaymentID = ""
	_, err := svc.CreateOrder(context.Background(), authID, in)
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))

	in = validOrderInput(authID.String())
	in.Items = nil
	_, err = svc.CreateOrder(context.Background(), authID, in)
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
}

func TestCreateOrder_MalformedProductID(t *testing.T) {
	svc, authID, store, _ := newOrderFixture(model.RoleGuest)

	in := validOrderInput(authID.String())
	in.Items[1].ID = "not-a-uuid"
	_, err := svc.CreateOrder(context.Background(), authID, in)
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
	assert.Empty(t, store.orders)
}

func TestCreateOrder_TotalMismatch(t *testing.T) {
	svc, authID, store, _ := newOrderFixture(model.RoleGuest)

	in := validOrderInput(authID.String())
	in.TotalAmount = decimal.RequireFromString("2000")
	_, err := svc.CreateOrder(context.Background(), authID, in)
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
	assert.Empty(t, store.orders)
}

func TestCreateOrder_NoProfile(t *testing.T) {
	svc, authID, _, users := newOrderFixture(model.RoleGuest)
	users.profile = nil

	_, err := svc.CreateOrder(context.Background(), authID, validOrderInput(authID.String()))
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
}

func TestListOrders_AdminOnly(t *testing.T) {
	svc, authID, _, _ := newOrderFixture(model.RoleStudent)

	_, err := svc.ListOrders(context.Background(), authID, "")
	require.Error(t, err)
	assert.Equal(t, 403, HTTPStatus(err))
}

func TestListOrders_AdminWithFilter(t *testing.T) {
	svc, authID, store, users := newOrderFixture(model.RoleAdmin)

	other := &model.Order{UserID: uuid.New(), PurchaseDate: time.Now()}
	require.NoError(t, store.Create(context.Background(), other))
	mine := &model.Order{UserID: users.profile.UserID, PurchaseDate: time.Now()}
	require.NoError(t, store.Create(context.Background(), mine))

	all, err := svc.ListOrders(context.Background(), authID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListOrders(context.Background(), authID, users.profile.UserID.String())
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, users.profile.UserID, filtered[0].UserID)

	_, err = svc.ListOrders(context.Background(), authID, "junk")
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
}

func TestDeleteOrders_ValidatesAllBeforeDeleting(t *testing.T) {
	svc, authID, store, _ := newOrderFixture(model.RoleAdmin)

	ids := []string{uuid.NewString(), "broken", uuid.NewString()}
	_, err := svc.DeleteOrders(context.Background(), authID, ids)
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
	assert.Zero(t, store.deleteCalls)

	deleted, err := svc.DeleteOrders(context.Background(), authID, []string{uuid.NewString(), uuid.NewString()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 1, store.deleteCalls)
}

func TestDeleteOrders_NonAdmin(t *testing.T) {
	svc, authID, store, _ := newOrderFixture(model.RoleGuest)

	_, err := svc.DeleteOrders(context.Background(), authID, []string{uuid.NewString()})
	require.Error(t, err)
	assert.Equal(t, 403, HTTPStatus(err))
	assert.Zero(t, store.deleteCalls)
}
