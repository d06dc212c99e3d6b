package services

import (
	"context"
	"encoding/json"
	"strings"

	"ExamPrepAPI/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currencies the store prices in.
const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

// CartStore is the staging-area persistence the cart service runs on.
type CartStore interface {
	Get(ctx context.Context, authID uuid.UUID) (*model.Cart, error)
	Save(ctx context.Context, authID uuid.UUID, cart *model.Cart) error
	Clear(ctx context.Context, authID uuid.UUID) error
}

type CartService struct {
	Carts CartStore
}

func NewCartService(carts CartStore) *CartService {
	return &CartService{Carts: carts}
}

// AddItemInput carries the raw client payload. Price fields are untyped on
// purpose: catalogs deliver them as numbers or strings interchangeably, and
// normalization happens exactly once, here.
type AddItemInput struct {
	ProductID     string
	Type          string
	Title         string
	Slug          string
	DumpsPriceINR any
	DumpsPriceUSD any
	ExamPriceINR  any
	ExamPriceUSD  any
	Price         any
}

// CoercePrice turns any price-like input into a non-negative decimal.
// Non-numeric, empty and negative inputs all become zero.
func CoercePrice(v any) decimal.Decimal {
	var d decimal.Decimal
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(t)
	case float32:
		d = decimal.NewFromFloat32(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case json.Number:
		parsed, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case decimal.Decimal:
		d = t
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ItemPrice resolves an item's unit price for a currency through a fixed
// fallback chain: the type-specific field, then the currency's dumps price,
// then the generic price, then zero. Callers always get a non-negative value.
func ItemPrice(it model.CartItem, currency string) decimal.Decimal {
	var typed, generic decimal.Decimal
	switch currency {
	case CurrencyUSD:
		generic = it.DumpsPriceUSD
		if it.Type == model.ProductTypeExam {
			typed = it.ExamPriceUSD
		} else {
			typed = it.DumpsPriceUSD
		}
	default:
		generic = it.DumpsPriceINR
		if it.Type == model.ProductTypeExam {
			typed = it.ExamPriceINR
		} else {
			typed = it.DumpsPriceINR
		}
	}

	if typed.IsPositive() {
		return typed
	}
	if generic.IsPositive() {
		return generic
	}
	if it.Price.IsPositive() {
		return it.Price
	}
	return decimal.Zero
}

// Add stages an item. An item without a product id is rejected with no
// effect. Re-adding the same (id, type) bumps its quantity instead of
// duplicating the line.
func (s *CartService) Add(ctx context.Context, authID uuid.UUID, in AddItemInput) (*model.Cart, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, ErrInvalid("product id is required")
	}

	cart, err := s.Carts.Get(ctx, authID)
	if err != nil {
		return nil, ErrInternal(err)
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == in.ProductID && cart.Items[i].Type == in.Type {
			cart.Items[i].Quantity++
			if err := s.Carts.Save(ctx, authID, cart); err != nil {
				return nil, ErrInternal(err)
			}
			return cart, nil
		}
	}

	cart.Items = append(cart.Items, model.CartItem{
		ProductID:     in.ProductID,
		Type:          in.Type,
		Title:         in.Title,
		Slug:          in.Slug,
		Quantity:      1,
		DumpsPriceINR: CoercePrice(in.DumpsPriceINR),
		DumpsPriceUSD: CoercePrice(in.DumpsPriceUSD),
		ExamPriceINR:  CoercePrice(in.ExamPriceINR),
		ExamPriceUSD:  CoercePrice(in.ExamPriceUSD),
		Price:         CoercePrice(in.Price),
	})

	if err := s.Carts.Save(ctx, authID, cart); err != nil {
		return nil, ErrInternal(err)
	}
	return cart, nil
}

// Remove deletes one line by (id, type). Removal is always explicit, a
// quantity never decrements to zero.
func (s *CartService) Remove(ctx context.Context, authID uuid.UUID, productID, itemType string) (*model.Cart, error) {
	cart, err := s.Carts.Get(ctx, authID)
	if err != nil {
		return nil, ErrInternal(err)
	}

	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID == productID && it.Type == itemType {
			continue
		}
		kept = append(kept, it)
	}
	cart.Items = kept

	if err := s.Carts.Save(ctx, authID, cart); err != nil {
		return nil, ErrInternal(err)
	}
	return cart, nil
}

// UpdateQuantity sets a line's quantity. Quantities below one are invalid.
func (s *CartService) UpdateQuantity(ctx context.Context, authID uuid.UUID, productID, itemType string, qty int) (*model.Cart, error) {
	if qty < 1 {
		return nil, ErrInvalid("quantity must be at least 1")
	}

	cart, err := s.Carts.Get(ctx, authID)
	if err != nil {
		return nil, ErrInternal(err)
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && cart.Items[i].Type == itemType {
			cart.Items[i].Quantity = qty
			if err := s.Carts.Save(ctx, authID, cart); err != nil {
				return nil, ErrInternal(err)
			}
			return cart, nil
		}
	}
	return nil, ErrNotFound("item not in cart")
}

func (s *CartService) Clear(ctx context.Context, authID uuid.UUID) error {
	if err := s.Carts.Clear(ctx, authID); err != nil {
		return ErrInternal(err)
	}
	return nil
}

// Get returns the cart with its total and item count for one currency.
// Totals are recomputed on every read; carts are small.
func (s *CartService) Get(ctx context.Context, authID uuid.UUID, currency string) (*model.CartResponse, error) {
	if currency != CurrencyUSD {
		currency = CurrencyINR
	}

	cart, err := s.Carts.Get(ctx, authID)
	if err != nil {
		return nil, ErrInternal(err)
	}

	total := decimal.Zero
	count := 0
	for _, it := range cart.Items {
		total = total.Add(ItemPrice(it, currency).Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}

	return &model.CartResponse{
		Items:     cart.Items,
		Total:     total,
		ItemCount: count,
		Currency:  currency,
	}, nil
}
