// Package storage provides the durable string-keyed store that carries
// the cart snapshot and the auth token across restarts.
package storage

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
)

// ErrKeyNotFound is returned when a key has no stored value
var ErrKeyNotFound = shared.NewDomainError("KEY_NOT_FOUND", "No value stored under this key")

// KeyValueStore is a simple string-keyed get/set/remove store.
// Values are opaque strings; the cart repository stores the JSON
// encoding of the item slice, the token store a bearer token.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes the value stored under key; removing an absent
	// key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
