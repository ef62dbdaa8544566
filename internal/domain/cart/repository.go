package cart

import "context"

// Repository persists the full cart snapshot to durable storage.
// The snapshot is the JSON encoding of the item slice under a fixed
// key; implementations live in infrastructure/storage.
type Repository interface {
	// Load returns the persisted snapshot, or an empty slice when no
	// snapshot exists yet
	Load(ctx context.Context) ([]Item, error)

	// Save replaces the persisted snapshot with the given items
	Save(ctx context.Context, items []Item) error

	// Clear erases the persisted snapshot
	Clear(ctx context.Context) error
}

// Notifier receives a transient, auto-dismissing confirmation signal
// when a product is first added to the cart. Delivery is best-effort
// and must never block or fail a cart mutation.
type Notifier interface {
	ItemAdded(item Item)
}
