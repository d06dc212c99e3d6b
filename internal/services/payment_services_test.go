package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"ExamPrepAPI/external/paypal"
	"ExamPrepAPI/external/razorpay"
	"ExamPrepAPI/internal/model"
	"ExamPrepAPI/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentStore struct {
	created   []*model.Payment
	createErr error
}

func (f *fakePaymentStore) Create(_ context.Context, p *model.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.created {
		if existing.PaymentMethod == p.PaymentMethod && existing.GatewayPaymentID == p.GatewayPaymentID {
			return repository.ErrDuplicatePayment
		}
	}
	p.PaymentID = uuid.New()
	f.created = append(f.created, p)
	return nil
}

func (f *fakePaymentStore) GetByGatewayID(_ context.Context, method, gatewayPaymentID string) (*model.Payment, error) {
	for _, p := range f.created {
		if p.PaymentMethod == method && p.GatewayPaymentID == gatewayPaymentID {
			return p, nil
		}
	}
	return nil, nil
}

type fakeProfileStore struct {
	profile      *model.User
	upgradeCalls int
}

func (f *fakeProfileStore) GetByAuthID(_ context.Context, authID uuid.UUID) (*model.User, error) {
	if f.profile == nil || f.profile.AuthID != authID {
		return nil, nil
	}
	cp := *f.profile
	return &cp, nil
}

func (f *fakeProfileStore) UpgradeEntitlement(_ context.Context, _ uuid.UUID) error {
	f.upgradeCalls++
	f.profile.Subscription = model.SubscriptionYes
	if f.profile.Role != model.RoleAdmin {
		f.profile.Role = model.RoleStudent
	}
	return nil
}

type fakeRazorpay struct {
	payment *razorpay.Payment
	err     error
	calls   int
}

func (f *fakeRazorpay) FetchPayment(_ context.Context, _ string) (*razorpay.Payment, error) {
	f.calls++
	return f.payment, f.err
}

type fakePayPal struct {
	order *paypal.Order
	err   error
}

func (f *fakePayPal) FetchOrder(_ context.Context, _ string) (*paypal.Order, error) {
	return f.order, f.err
}

type fakePublisher struct {
	kinds []string
}

func (f *fakePublisher) Publish(_ context.Context, _ string, kind string, _ any) {
	f.kinds = append(f.kinds, kind)
}

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type paymentFixture struct {
	svc      *PaymentService
	authID   uuid.UUID
	payments *fakePaymentStore
	users    *fakeProfileStore
	rzp      *fakeRazorpay
	pp       *fakePayPal
	events   *fakePublisher
}

func newPaymentFixture(secret string) *paymentFixture {
	authID := uuid.New()
	users := &fakeProfileStore{profile: &model.User{
		UserID:       uuid.New(),
		AuthID:       authID,
		Email:        "student@example.com",
		Role:         model.RoleGuest,
		Subscription: model.SubscriptionNo,
	}}
	payments := &fakePaymentStore{}
	rzp := &fakeRazorpay{}
	pp := &fakePayPal{}
	events := &fakePublisher{}

	svc := NewPaymentService(payments, users, rzp, pp, events, secret, zerolog.Nop())
	return &paymentFixture{
		svc: svc, authID: authID,
		payments: payments, users: users, rzp: rzp, pp: pp, events: events,
	}
}

func TestVerifyRazorpay_Success(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.rzp.payment = &razorpay.Payment{ID: "pay_1", Amount: 49900, Currency: "INR", Status: "captured"}

	res, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, VerifyRazorpayInput{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        sign("order_1", "pay_1", "S"),
		Amount:           decimal.RequireFromString("499.00"),
		UserID:           fx.authID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SubscriptionYes, res.User.Subscription)
	assert.Equal(t, model.RoleStudent, res.User.Role)

	require.Len(t, fx.payments.created, 1)
	p := fx.payments.created[0]
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("499")))
	assert.Equal(t, "INR", p.Currency)
	assert.Equal(t, model.PaymentMethodRazorpay, p.PaymentMethod)
	require.NotNil(t, p.GatewayOrderID)
	assert.Equal(t, "order_1", *p.GatewayOrderID)

	assert.Equal(t, 1, fx.users.upgradeCalls)
	assert.Equal(t, []string{"payment.completed"}, fx.events.kinds)
}

func TestVerifyRazorpay_BadSignature(t *testing.T) {
	fx := newPaymentFixture("S")

	_, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, VerifyRazorpayInput{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "deadbeef",
		Amount:           decimal.RequireFromString("499"),
		UserID:           fx.authID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))

	// no side effects, not even the authoritative fetch
	assert.Zero(t, fx.rzp.calls)
	assert.Empty(t, fx.payments.created)
	assert.Zero(t, fx.users.upgradeCalls)
}

func TestVerifyRazorpay_AmountTampered(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.rzp.payment = &razorpay.Payment{ID: "pay_1", Amount: 49900, Currency: "INR"}

	_, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, VerifyRazorpayInput{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        sign("order_1", "pay_1", "S"),
		Amount:           decimal.RequireFromString("500"),
		UserID:           fx.authID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
	assert.Empty(t, fx.payments.created)
	assert.Equal(t, model.SubscriptionNo, fx.users.profile.Subscription)
}

func TestVerifyRazorpay_IdentitySpoof(t *testing.T) {
	fx := newPaymentFixture("S")

	_, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, VerifyRazorpayInput{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        sign("order_1", "pay_1", "S"),
		Amount:           decimal.RequireFromString("499"),
		UserID:           uuid.NewString(), // someone else
	})
	require.Error(t, err)
	assert.Equal(t, 403, HTTPStatus(err))
	assert.Empty(t, fx.payments.created)
}

func TestVerifyRazorpay_GatewayDown(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.rzp.err = errors.New("connection refused")

	_, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, VerifyRazorpayInput{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        sign("order_1", "pay_1", "S"),
		Amount:           decimal.RequireFromString("499"),
		UserID:           fx.authID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, 502, HTTPStatus(err))
	assert.Empty(t, fx.payments.created)
}

func TestVerifyRazorpay_ReplayIsIdempotent(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.rzp.payment = &razorpay.Payment{ID: "pay_1", Amount: 49900, Currency: "INR"}

	in := VerifyRazorpayInput{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        sign("order_1", "pay_1", "S"),
		Amount:           decimal.RequireFromString("499"),
		UserID:           fx.authID.String(),
	}

	first, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, in)
	require.NoError(t, err)
	second, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, in)
	require.NoError(t, err)

	// exactly one record, entitlement applied exactly once
	assert.Len(t, fx.payments.created, 1)
	assert.Equal(t, 1, fx.users.upgradeCalls)
	assert.Equal(t, first.Payment.PaymentID, second.Payment.PaymentID)
	assert.Equal(t, []string{"payment.completed"}, fx.events.kinds)
}

func TestVerifyPayPal_Success(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.pp.order = &paypal.Order{
		ID:     "ORD-1",
		Status: paypal.StatusCompleted,
		PurchaseUnits: []paypal.PurchaseUnit{
			{Amount: paypal.Amount{CurrencyCode: "USD", Value: "19.99"}},
		},
	}

	res, err := fx.svc.VerifyPayPal(context.Background(), fx.authID, VerifyPayPalInput{
		GatewayOrderID: "ORD-1",
		Amount:         decimal.RequireFromString("19.99"),
		UserID:         fx.authID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SubscriptionYes, res.User.Subscription)
	require.Len(t, fx.payments.created, 1)
	assert.Equal(t, "USD", fx.payments.created[0].Currency)
	assert.Equal(t, model.PaymentMethodPayPal, fx.payments.created[0].PaymentMethod)
}

func TestVerifyPayPal_PendingStatus(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.pp.order = &paypal.Order{
		ID:     "ORD-1",
		Status: "PENDING",
		PurchaseUnits: []paypal.PurchaseUnit{
			{Amount: paypal.Amount{CurrencyCode: "INR", Value: "499.00"}},
		},
	}

	_, err := fx.svc.VerifyPayPal(context.Background(), fx.authID, VerifyPayPalInput{
		GatewayOrderID: "ORD-1",
		Amount:         decimal.RequireFromString("499"),
		UserID:         fx.authID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
	assert.Equal(t, "Invalid order status", PublicMessage(err))
	assert.Empty(t, fx.payments.created)
}

func TestVerifyPayPal_DecimalStringAmount(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.pp.order = &paypal.Order{
		ID:     "ORD-1",
		Status: paypal.StatusApproved,
		PurchaseUnits: []paypal.PurchaseUnit{
			// no currency from the gateway: defaults to INR
			{Amount: paypal.Amount{Value: "19.99"}},
		},
	}

	res, err := fx.svc.VerifyPayPal(context.Background(), fx.authID, VerifyPayPalInput{
		GatewayOrderID: "ORD-1",
		Amount:         decimal.RequireFromString("19.99"),
		UserID:         fx.authID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "INR", res.Payment.Currency)
}

func TestVerifyPayPal_AmountMismatch(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.pp.order = &paypal.Order{
		ID:     "ORD-1",
		Status: paypal.StatusApproved,
		PurchaseUnits: []paypal.PurchaseUnit{
			{Amount: paypal.Amount{CurrencyCode: "INR", Value: "499.00"}},
		},
	}

	_, err := fx.svc.VerifyPayPal(context.Background(), fx.authID, VerifyPayPalInput{
		GatewayOrderID: "ORD-1",
		Amount:         decimal.RequireFromString("500"),
		UserID:         fx.authID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
	assert.Empty(t, fx.payments.created)
}

func TestVerify_ProfileMissing(t *testing.T) {
	fx := newPaymentFixture("S")
	fx.users.profile = &model.User{AuthID: uuid.New()} // different identity
	fx.rzp.payment = &razorpay.Payment{ID: "pay_1", Amount: 49900}

	_, err := fx.svc.VerifyRazorpay(context.Background(), fx.authID, VerifyRazorpayInput{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        sign("order_1", "pay_1", "S"),
		Amount:           decimal.RequireFromString("499"),
		UserID:           fx.authID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, 404, HTTPStatus(err))
}
