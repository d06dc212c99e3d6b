package services

import (
	"context"
	"errors"

	"ExamPrepAPI/external/notifier"
	"ExamPrepAPI/external/paypal"
	"ExamPrepAPI/external/razorpay"
	"ExamPrepAPI/internal/model"
	"ExamPrepAPI/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RazorpayGateway fetches the authoritative payment resource (Variant A).
type RazorpayGateway interface {
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
}

// PayPalGateway fetches the authoritative order resource (Variant B).
type PayPalGateway interface {
	FetchOrder(ctx context.Context, orderID string) (*paypal.Order, error)
}

// PaymentStore persists verified payments. Create must reject a second insert
// for the same (method, gateway payment id) with repository.ErrDuplicatePayment.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByGatewayID(ctx context.Context, method, gatewayPaymentID string) (*model.Payment, error)
}

type PaymentService struct {
	Payments PaymentStore
	Users    ProfileStore
	Razorpay RazorpayGateway
	PayPal   PayPalGateway
	Events   EventPublisher

	// Secret for recomputing Variant A checkout signatures.
	RazorpaySecret string

	Log zerolog.Logger
}

func NewPaymentService(
	payments PaymentStore,
	users ProfileStore,
	rzp RazorpayGateway,
	pp PayPalGateway,
	events EventPublisher,
	razorpaySecret string,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		Payments:       payments,
		Users:          users,
		Razorpay:       rzp,
		PayPal:         pp,
		Events:         events,
		RazorpaySecret: razorpaySecret,
		Log:            log,
	}
}

type VerifyRazorpayInput struct {
	GatewayPaymentID string          `json:"gatewayPaymentId"`
	GatewayOrderID   string          `json:"gatewayOrderId"`
	Signature        string          `json:"signature"`
	Amount           decimal.Decimal `json:"amount"`
	UserID           string          `json:"userId"`
}

type VerifyPayPalInput struct {
	GatewayOrderID string          `json:"gatewayOrderId"`
	Amount         decimal.Decimal `json:"amount"`
	UserID         string          `json:"userId"`
}

// VerifyResult is the success response of both verifiers: the recorded
// payment plus the upgraded, sanitized profile.
type VerifyResult struct {
	Payment *model.Payment
	User    *model.User
}

// VerifyRazorpay runs the Variant A pipeline: auth → fields → signature →
// authoritative amount → record → entitlement. Every validation failure
// short-circuits with no side effect.
func (s *PaymentService) VerifyRazorpay(ctx context.Context, authID uuid.UUID, in VerifyRazorpayInput) (*VerifyResult, error) {
	if err := checkIdentity(authID, in.UserID); err != nil {
		return nil, err
	}
	if in.GatewayPaymentID == "" || in.GatewayOrderID == "" || in.Signature == "" {
		return nil, ErrInvalid("missing required fields")
	}

	if !razorpay.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature, s.RazorpaySecret) {
		return nil, ErrInvalid("invalid payment signature")
	}

	// The claimed amount is untrusted. Fetch the payment from the gateway
	// and compare against its minor-unit amount.
	remote, err := s.Razorpay.FetchPayment(ctx, in.GatewayPaymentID)
	if err != nil {
		return nil, ErrUpstream("payment gateway unavailable", err)
	}

	confirmed := decimal.NewFromInt(remote.Amount).Div(decimal.NewFromInt(100))
	if !confirmed.Equal(in.Amount) {
		s.Log.Warn().
			Str("gateway_payment_id", in.GatewayPaymentID).
			Str("claimed", in.Amount.String()).
			Str("confirmed", confirmed.String()).
			Msg("razorpay amount mismatch")
		return nil, ErrInvalid("payment amount mismatch")
	}

	currency := remote.Currency
	if currency == "" {
		currency = CurrencyINR
	}

	gatewayOrderID := in.GatewayOrderID
	payment := &model.Payment{
		Amount:           confirmed,
		Currency:         currency,
		PaymentMethod:    model.PaymentMethodRazorpay,
		GatewayPaymentID: in.GatewayPaymentID,
		GatewayOrderID:   &gatewayOrderID,
		Status:           model.PaymentStatusCompleted,
	}

	return s.recordAndUpgrade(ctx, authID, payment)
}

// VerifyPayPal runs the Variant B pipeline: same shape as Variant A, with the
// signature step replaced by a remote status check of the order resource.
func (s *PaymentService) VerifyPayPal(ctx context.Context, authID uuid.UUID, in VerifyPayPalInput) (*VerifyResult, error) {
	if err := checkIdentity(authID, in.UserID); err != nil {
		return nil, err
	}
	if in.GatewayOrderID == "" {
		return nil, ErrInvalid("missing required fields")
	}

	remote, err := s.PayPal.FetchOrder(ctx, in.GatewayOrderID)
	if err != nil {
		return nil, ErrUpstream("payment gateway unavailable", err)
	}

	if remote.Status != paypal.StatusApproved && remote.Status != paypal.StatusCompleted {
		return nil, ErrInvalid("Invalid order status")
	}
	if len(remote.PurchaseUnits) == 0 {
		return nil, ErrUpstream("payment gateway unavailable", errors.New("order has no purchase units"))
	}

	unit := remote.PurchaseUnits[0]
	confirmed, err := decimal.NewFromString(unit.Amount.Value)
	if err != nil {
		return nil, ErrUpstream("payment gateway unavailable", err)
	}
	if !confirmed.Equal(in.Amount) {
		s.Log.Warn().
			Str("gateway_order_id", in.GatewayOrderID).
			Str("claimed", in.Amount.String()).
			Str("confirmed", confirmed.String()).
			Msg("paypal amount mismatch")
		return nil, ErrInvalid("payment amount mismatch")
	}

	currency := unit.Amount.CurrencyCode
	if currency == "" {
		currency = CurrencyINR
	}

	payment := &model.Payment{
		Amount:           confirmed,
		Currency:         currency,
		PaymentMethod:    model.PaymentMethodPayPal,
		GatewayPaymentID: in.GatewayOrderID,
		Status:           model.PaymentStatusCompleted,
	}

	return s.recordAndUpgrade(ctx, authID, payment)
}

// recordAndUpgrade is the shared tail of both verifiers: persist the payment
// exactly once, upgrade the entitlement, notify. A duplicate gateway payment
// id is an idempotent replay: the existing record is returned and the
// entitlement step is skipped.
func (s *PaymentService) recordAndUpgrade(ctx context.Context, authID uuid.UUID, payment *model.Payment) (*VerifyResult, error) {
	profile, err := s.Users.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, ErrInternal(err)
	}
	if profile == nil {
		return nil, ErrNotFound("user profile not found")
	}
	payment.UserID = profile.UserID

	if err := s.Payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			existing, gerr := s.Payments.GetByGatewayID(ctx, payment.PaymentMethod, payment.GatewayPaymentID)
			if gerr != nil || existing == nil {
				return nil, ErrInternal(gerr)
			}
			s.Log.Info().
				Str("gateway_payment_id", payment.GatewayPaymentID).
				Msg("payment replay, returning existing record")
			return &VerifyResult{Payment: existing, User: profile}, nil
		}
		return nil, ErrInternal(err)
	}

	if err := s.Users.UpgradeEntitlement(ctx, authID); err != nil {
		return nil, ErrInternal(err)
	}
	profile.Subscription = model.SubscriptionYes
	if profile.Role != model.RoleAdmin {
		profile.Role = model.RoleStudent
	}

	s.Events.Publish(ctx, profile.UserID.String(), notifier.EventPaymentCompleted, map[string]any{
		"payment_id":         payment.PaymentID,
		"gateway_payment_id": payment.GatewayPaymentID,
		"amount":             payment.Amount,
		"currency":           payment.Currency,
		"method":             payment.PaymentMethod,
		"email":              profile.Email,
	})
	s.Log.Info().
		Str("method", payment.PaymentMethod).
		Str("gateway_payment_id", payment.GatewayPaymentID).
		Str("user_id", profile.UserID.String()).
		Msg("payment verified")

	return &VerifyResult{Payment: payment, User: profile}, nil
}

// checkIdentity rejects requests whose asserted user id is not the session's
// identity, then rejects malformed identifiers.
func checkIdentity(authID uuid.UUID, userID string) error {
	if userID != authID.String() {
		return ErrForbidden("user id does not match session")
	}
	return nil
}
