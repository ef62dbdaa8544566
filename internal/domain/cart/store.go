package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store holds the order lines of the cart currently being composed.
// It is an explicitly constructed object with a defined lifecycle:
// created once at application start, loaded from the repository, and
// shared by every consumer through dependency passing.
//
// Each mutation is one logical step under the mutex: mutate the item
// slice, then synchronously persist the full snapshot. A persistence
// failure is logged and swallowed; the in-memory state stays
// authoritative for the session.
type Store struct {
	mu       sync.Mutex
	items    []Item
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewStore creates a cart store and loads any persisted snapshot.
// A load failure is not fatal; the store starts empty.
func NewStore(ctx context.Context, repo Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		repo:   repo,
		logger: logger,
	}
	items, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load persisted cart, starting empty", zap.Error(err))
		return s
	}
	s.items = items
	return s
}

// SetNotifier sets the confirmation signal receiver for successful inserts
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// AddItem inserts the product as a new line with quantity 1 if its ID
// is not already present. Adding an already-present ID is a no-op and
// does not increment quantity. Returns true when a line was inserted.
// The inserted line always starts at quantity 1 regardless of the
// quantity carried on the argument; UpdateQuantity is the only way to
// set a different count.
func (s *Store) AddItem(ctx context.Context, item Item) bool {
	s.mu.Lock()
	if s.indexOf(item.ID) >= 0 {
		s.mu.Unlock()
		return false
	}
	item.Quantity = 1
	s.items = append(s.items, item)
	s.persist(ctx)
	notifier := s.notifier
	s.mu.Unlock()

	if notifier != nil {
		notifier.ItemAdded(item)
	}
	return true
}

// RemoveItem deletes the line with the given product ID; no-op if absent
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, id)
}

// UpdateQuantity sets the quantity of the line with the given ID.
// A quantity below 1 removes the line. No upper bound is enforced.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeLocked(ctx, id)
		return
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.items[idx].Quantity = quantity
	s.persist(ctx)
}

// Clear empties the cart and erases the persisted snapshot
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Warn("Failed to erase persisted cart", zap.Error(err))
	}
}

// Totals recomputes the aggregate figures from the current items on
// every call; nothing is cached.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := Totals{Subtotal: decimal.Zero}
	for _, item := range s.items {
		totals.ItemCount += item.Quantity
		totals.Subtotal = totals.Subtotal.Add(item.LineTotal())
	}
	return totals
}

// IsInCart reports whether a line with the given product ID exists
func (s *Store) IsInCart(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Items returns a copy of the current order lines
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Len returns the number of distinct lines in the cart
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(ctx context.Context, id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.persist(ctx)
}

// persist writes the snapshot while holding the mutex, keeping the
// mutation and the write one atomic read-modify-write step
func (s *Store) persist(ctx context.Context) {
	if err := s.repo.Save(ctx, s.items); err != nil {
		s.logger.Warn("Failed to persist cart snapshot, in-memory state remains authoritative",
			zap.Int("lines", len(s.items)),
			zap.Error(err))
	}
}
