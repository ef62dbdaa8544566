package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	t.Run("get of absent key returns ErrKeyNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", "v"))
		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", value)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "gone", "v"))
		require.NoError(t, store.Delete(ctx, "gone"))
		_, err := store.Get(ctx, "gone")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("delete of absent key is not an error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-existed"))
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("state survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")

		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "cart", `[{"id":"p1"}]`))
		require.NoError(t, store.Set(ctx, "token", "abc"))
		require.NoError(t, store.Close())

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		value, err := reopened.Get(ctx, "cart")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"p1"}]`, value)
	})

	t.Run("delete is persisted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")

		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "k", "v"))
		require.NoError(t, store.Delete(ctx, "k"))

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		_, err = reopened.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("missing file starts empty", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "nonexistent.json"))
		require.NoError(t, err)
		_, err = store.Get(ctx, "anything")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestCartRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("missing snapshot loads as empty cart", func(t *testing.T) {
		repo := NewCartRepository(NewInMemoryStore(), "cart")
		items, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("corrupt snapshot surfaces an error", func(t *testing.T) {
		store := NewInMemoryStore()
		require.NoError(t, store.Set(ctx, "cart", "{not json"))

		repo := NewCartRepository(store, "cart")
		_, err := repo.Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupt")
	})

	t.Run("clear erases the stored key", func(t *testing.T) {
		store := NewInMemoryStore()
		repo := NewCartRepository(store, "cart")
		require.NoError(t, repo.Save(ctx, nil))
		require.NoError(t, repo.Clear(ctx))
		_, err := store.Get(ctx, "cart")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("propagates storage write failures", func(t *testing.T) {
		repo := NewCartRepository(&failingStore{}, "cart")
		err := repo.Save(ctx, nil)
		assert.Error(t, err)
	})
}

// failingStore simulates a storage quota failure
type failingStore struct{}

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", ErrKeyNotFound
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	return errors.New("quota exceeded")
}

func (f *failingStore) Delete(ctx context.Context, key string) error { return nil }
func (f *failingStore) Close() error                                 { return nil }
