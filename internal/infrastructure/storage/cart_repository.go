package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erp/pos/internal/domain/cart"
)

// CartRepository persists the cart snapshot as the JSON encoding of
// the item slice under a fixed key in the key-value store
type CartRepository struct {
	store KeyValueStore
	key   string
}

// NewCartRepository creates a cart repository over the given store
func NewCartRepository(store KeyValueStore, key string) *CartRepository {
	if key == "" {
		key = "cart"
	}
	return &CartRepository{
		store: store,
		key:   key,
	}
}

// Load returns the persisted snapshot; a missing key yields an empty cart
func (r *CartRepository) Load(ctx context.Context) ([]cart.Item, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	var items []cart.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("cart snapshot is corrupt: %w", err)
	}
	return items, nil
}

// Save replaces the persisted snapshot
func (r *CartRepository) Save(ctx context.Context, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return r.store.Set(ctx, r.key, string(data))
}

// Clear erases the persisted snapshot
func (r *CartRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, r.key)
}

// Ensure CartRepository implements cart.Repository
var _ cart.Repository = (*CartRepository)(nil)
