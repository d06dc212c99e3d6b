package services

import (
	"context"
	"time"

	"ExamPrepAPI/external/notifier"
	"ExamPrepAPI/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProfileStore resolves and mutates internal user profiles.
type ProfileStore interface {
	GetByAuthID(ctx context.Context, authID uuid.UUID) (*model.User, error)
	UpgradeEntitlement(ctx context.Context, authID uuid.UUID) error
}

// OrderStore persists orders with their line-item snapshots.
type OrderStore interface {
	Create(ctx context.Context, order *model.Order) error
	List(ctx context.Context, userID *uuid.UUID) ([]model.Order, error)
	DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// EventPublisher is the fire-and-forget notifier hook.
type EventPublisher interface {
	Publish(ctx context.Context, key string, kind string, payload any)
}

type OrderService struct {
	Orders OrderStore
	Users  ProfileStore
	Events EventPublisher
	Log    zerolog.Logger
}

func NewOrderService(orders OrderStore, users ProfileStore, events EventPublisher, log zerolog.Logger) *OrderService {
	return &OrderService{Orders: orders, Users: users, Events: events, Log: log}
}

type OrderItemInput struct {
	ID           string          `json:"_id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Category     string          `json:"category"`
	ExamCode     string          `json:"sapExamCode"`
	SKU          string          `json:"sku"`
	SamplePdfURL string          `json:"samplePdfUrl"`
	MainPdfURL   string          `json:"mainPdfUrl"`
	Slug         string          `json:"slug"`
}

type CreateOrderInput struct {
	UserID        string           `json:"userId"`
	Items         []OrderItemInput `json:"items"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"paymentMethod"`
	PaymentID     string           `json:"paymentId"`
}

type CreateOrderResult struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
}

// CreateOrder validates the submitted purchase snapshot and persists it.
// Preconditions fail fast, in order, before any write happens.
func (s *OrderService) CreateOrder(ctx context.Context, authID uuid.UUID, in CreateOrderInput) (*CreateOrderResult, error) {
	if in.UserID != authID.String() {
		return nil, ErrForbidden("user id does not match session")
	}

	if in.UserID == "" || len(in.Items) == 0 || in.PaymentMethod == "" || in.PaymentID == "" {
		return nil, ErrInvalid("missing required fields")
	}

	if _, err := uuid.Parse(in.UserID); err != nil {
		return nil, ErrInvalid("invalid user id")
	}

	itemIDs := make([]uuid.UUID, len(in.Items))
	for i, it := range in.Items {
		pid, err := uuid.Parse(it.ID)
		if err != nil {
			return nil, ErrInvalid("invalid product id")
		}
		itemIDs[i] = pid
	}

	profile, err := s.Users.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, ErrInternal(err)
	}
	if profile == nil {
		return nil, ErrInvalid("user profile not found")
	}

	// The snapshot must be internally consistent: the claimed total is the
	// sum of its own line items, nothing is re-read from the catalog.
	sum := decimal.Zero
	items := make([]model.OrderItem, len(in.Items))
	for i, it := range in.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(qty))))
		items[i] = model.OrderItem{
			ProductID:    itemIDs[i],
			Title:        it.Title,
			Price:        it.Price,
			Quantity:     qty,
			Category:     it.Category,
			ExamCode:     it.ExamCode,
			SKU:          it.SKU,
			SamplePdfURL: it.SamplePdfURL,
			MainPdfURL:   it.MainPdfURL,
			Slug:         it.Slug,
		}
	}
	if !sum.Equal(in.TotalAmount) {
		return nil, ErrInvalid("total amount does not match line items")
	}

	currency := in.Currency
	if currency == "" {
		currency = CurrencyINR
	}

	order := &model.Order{
		UserID:           profile.UserID,
		TotalAmount:      in.TotalAmount,
		Currency:         currency,
		PaymentMethod:    in.PaymentMethod,
		GatewayPaymentID: in.PaymentID,
		Status:           model.OrderStatusCompleted,
		PurchaseDate:     time.Now(),
		Items:            items,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, ErrInternal(err)
	}

	s.Events.Publish(ctx, profile.UserID.String(), notifier.EventOrderCreated, map[string]any{
		"order_id":     order.OrderID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"currency":     order.Currency,
		"email":        profile.Email,
	})
	s.Log.Info().
		Str("order_number", order.OrderNumber).
		Str("user_id", profile.UserID.String()).
		Msg("order created")

	return &CreateOrderResult{OrderID: order.OrderID, OrderNumber: order.OrderNumber}, nil
}

// ListOrders returns all orders, optionally filtered by owner. Restricted to
// identities whose internal profile carries the admin role; the role check
// reads the profile, never the token.
func (s *OrderService) ListOrders(ctx context.Context, authID uuid.UUID, filterUserID string) ([]model.Order, error) {
	if err := s.requireAdmin(ctx, authID); err != nil {
		return nil, err
	}

	var filter *uuid.UUID
	if filterUserID != "" {
		id, err := uuid.Parse(filterUserID)
		if err != nil {
			return nil, ErrInvalid("invalid user id filter")
		}
		filter = &id
	}

	orders, err := s.Orders.List(ctx, filter)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return orders, nil
}

// DeleteOrders removes a batch of orders. Every id is validated before any
// deletion happens: one malformed id rejects the whole request.
func (s *OrderService) DeleteOrders(ctx context.Context, authID uuid.UUID, orderIDs []string) (int64, error) {
	if err := s.requireAdmin(ctx, authID); err != nil {
		return 0, err
	}
	if len(orderIDs) == 0 {
		return 0, ErrInvalid("no order ids given")
	}

	ids := make([]uuid.UUID, len(orderIDs))
	for i, raw := range orderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return 0, ErrInvalid("invalid order id")
		}
		ids[i] = id
	}

	deleted, err := s.Orders.DeleteBatch(ctx, ids)
	if err != nil {
		return 0, ErrInternal(err)
	}
	return deleted, nil
}

func (s *OrderService) requireAdmin(ctx context.Context, authID uuid.UUID) error {
	profile, err := s.Users.GetByAuthID(ctx, authID)
	if err != nil {
		return ErrInternal(err)
	}
	if profile == nil || profile.Role != model.RoleAdmin {
		return ErrForbidden("admin role required")
	}
	return nil
}
