package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ExamPrepAPI/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartSchemaVersion tags every persisted cart. Bumping it discards all stored
// carts on next read; a cart is a staging area, losing one is safe.
const CartSchemaVersion = 1

const cartTTL = 30 * 24 * time.Hour

type CartRepository struct {
	RDB *redis.Client
}

func NewCartRepository(rdb *redis.Client) *CartRepository {
	return &CartRepository{RDB: rdb}
}

func cartKey(authID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", authID)
}

// Get loads the user's cart. A missing key, an unreadable document or a
// schema-version mismatch all yield a fresh empty cart.
func (r *CartRepository) Get(ctx context.Context, authID uuid.UUID) (*model.Cart, error) {
	raw, err := r.RDB.Get(ctx, cartKey(authID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.Cart{Version: CartSchemaVersion, Items: []model.CartItem{}}, nil
		}
		return nil, err
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil || cart.Version != CartSchemaVersion {
		return &model.Cart{Version: CartSchemaVersion, Items: []model.CartItem{}}, nil
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return &cart, nil
}

func (r *CartRepository) Save(ctx context.Context, authID uuid.UUID, cart *model.Cart) error {
	cart.Version = CartSchemaVersion
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.RDB.Set(ctx, cartKey(authID), raw, cartTTL).Err()
}

func (r *CartRepository) Clear(ctx context.Context, authID uuid.UUID) error {
	return r.RDB.Del(ctx, cartKey(authID)).Err()
}
