package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/pos/internal/domain/cart"
	"github.com/erp/pos/internal/infrastructure/storage"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCartRouter(t *testing.T) (*gin.Engine, *cart.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := storage.NewCartRepository(storage.NewInMemoryStore(), "cart")
	cartStore := cart.NewStore(context.Background(), repo, zap.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewCartHandler(cartStore, zap.NewNop()).RegisterRoutes(api)
	return engine, cartStore
}

func seedItem(t *testing.T, store *cart.Store, id, name string, price int64) {
	t.Helper()
	item, err := cart.NewItem(id, name, decimal.NewFromInt(price), "")
	require.NoError(t, err)
	require.True(t, store.AddItem(context.Background(), item))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCartGet(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		engine, _ := setupCartRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)

		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var view CartView
		require.NoError(t, json.Unmarshal(data, &view))
		assert.Empty(t, view.Items)
		assert.Zero(t, view.Totals.ItemCount)
	})

	t.Run("returns lines and totals", func(t *testing.T) {
		engine, store := setupCartRouter(t)
		seedItem(t, store, "p1", "Beans", 3)
		seedItem(t, store, "p2", "Rice", 5)
		store.UpdateQuantity(context.Background(), "p2", 2)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var view CartView
		require.NoError(t, json.Unmarshal(data, &view))
		require.Len(t, view.Items, 2)
		assert.Equal(t, 3, view.Totals.ItemCount)
		assert.True(t, decimal.NewFromInt(13).Equal(view.Totals.Subtotal))
	})
}

func TestCartUpdateQuantity(t *testing.T) {
	t.Run("updates an existing line", func(t *testing.T) {
		engine, store := setupCartRouter(t)
		seedItem(t, store, "p1", "Beans", 3)

		body := bytes.NewBufferString(`{"quantity": 4}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", body)
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		items := store.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 4, items[0].Quantity)
	})

	t.Run("quantity zero removes the line", func(t *testing.T) {
		engine, store := setupCartRouter(t)
		seedItem(t, store, "p1", "Beans", 3)

		body := bytes.NewBufferString(`{"quantity": 0}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", body)
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Zero(t, store.Len())
	})

	t.Run("quantity below one removes the line", func(t *testing.T) {
		engine, store := setupCartRouter(t)
		seedItem(t, store, "p1", "Beans", 3)

		body := bytes.NewBufferString(`{"quantity": -1}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", body)
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, store.Len())
	})

	t.Run("unknown line yields 404", func(t *testing.T) {
		engine, _ := setupCartRouter(t)

		body := bytes.NewBufferString(`{"quantity": 2}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/ghost", body)
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing quantity field yields 400", func(t *testing.T) {
		engine, store := setupCartRouter(t)
		seedItem(t, store, "p1", "Beans", 3)

		body := bytes.NewBufferString(`{}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", body)
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("malformed body yields 400", func(t *testing.T) {
		engine, _ := setupCartRouter(t)

		body := bytes.NewBufferString(`{`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", body)
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartRemoveItem(t *testing.T) {
	engine, store := setupCartRouter(t)
	seedItem(t, store, "p1", "Beans", 3)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/p1", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, store.Len())
}

func TestCartClear(t *testing.T) {
	engine, store := setupCartRouter(t)
	seedItem(t, store, "p1", "Beans", 3)
	seedItem(t, store, "p2", "Rice", 5)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, store.Len())
}
