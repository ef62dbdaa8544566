// Package auth persists the bearer token issued by the authentication
// collaborator and answers expiry questions about it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/storage"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when no token has been stored
var ErrNoToken = shared.NewDomainError("NO_TOKEN", "No auth token stored")

// TokenStore keeps the bearer token in the durable key-value store
// under its own key, next to the cart snapshot
type TokenStore struct {
	store storage.KeyValueStore
	key   string
}

// NewTokenStore creates a token store over the given key-value store
func NewTokenStore(store storage.KeyValueStore, key string) *TokenStore {
	if key == "" {
		key = "token"
	}
	return &TokenStore{
		store: store,
		key:   key,
	}
}

// Save persists the bearer token
func (s *TokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return shared.ErrInvalidInput
	}
	return s.store.Set(ctx, s.key, token)
}

// Load returns the stored bearer token, or ErrNoToken
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Clear removes the stored token
func (s *TokenStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}

// ExpiresAt returns the expiry claim of the stored token. The token
// is parsed without signature verification; validation is the issuing
// collaborator's job, we only need to know when to re-authenticate.
func (s *TokenStore) ExpiresAt(ctx context.Context) (time.Time, error) {
	raw, err := s.Load(ctx)
	if err != nil {
		return time.Time{}, err
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("stored token is not a valid JWT: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, shared.NewDomainError("NO_EXPIRY", "Stored token carries no expiry claim")
	}
	return exp.Time, nil
}

// Valid reports whether a token is stored and not yet expired. A
// token without an expiry claim is treated as valid.
func (s *TokenStore) Valid(ctx context.Context) bool {
	exp, err := s.ExpiresAt(ctx)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "NO_EXPIRY" {
			return true
		}
		return false
	}
	return time.Now().Before(exp)
}
