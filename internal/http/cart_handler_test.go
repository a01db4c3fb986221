package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/cart"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/catalog"
)

type fakeCartService struct {
	getCartFunc          func(ctx context.Context, customerID string) (*cart.Cart, error)
	addItemFunc          func(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error)
	removeItemFunc       func(ctx context.Context, customerID string, key cart.LineKey) (*cart.Cart, error)
	updateQuantityFunc   func(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error)
	changeSizeFunc       func(ctx context.Context, customerID, productID, oldSize, newSize string) (*cart.Cart, error)
	replaceSelectionFunc func(ctx context.Context, customerID string, keys []cart.LineKey) (*cart.Cart, error)
}

func (f *fakeCartService) GetCart(ctx context.Context, customerID string) (*cart.Cart, error) {
	if f.getCartFunc != nil {
		return f.getCartFunc(ctx, customerID)
	}
	return nil, nil
}

func (f *fakeCartService) AddItem(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error) {
	if f.addItemFunc != nil {
		return f.addItemFunc(ctx, customerID, productID, size, quantity)
	}
	return nil, nil
}

func (f *fakeCartService) RemoveItem(ctx context.Context, customerID string, key cart.LineKey) (*cart.Cart, error) {
	if f.removeItemFunc != nil {
		return f.removeItemFunc(ctx, customerID, key)
	}
	return nil, nil
}

func (f *fakeCartService) UpdateQuantity(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error) {
	if f.updateQuantityFunc != nil {
		return f.updateQuantityFunc(ctx, customerID, productID, size, quantity)
	}
	return nil, nil
}

func (f *fakeCartService) ChangeSize(ctx context.Context, customerID, productID, oldSize, newSize string) (*cart.Cart, error) {
	if f.changeSizeFunc != nil {
		return f.changeSizeFunc(ctx, customerID, productID, oldSize, newSize)
	}
	return nil, nil
}

func (f *fakeCartService) ReplaceSelection(ctx context.Context, customerID string, keys []cart.LineKey) (*cart.Cart, error) {
	if f.replaceSelectionFunc != nil {
		return f.replaceSelectionFunc(ctx, customerID, keys)
	}
	return nil, nil
}

func TestGetCartHandler(t *testing.T) {
	t.Run("missing customer id", func(t *testing.T) {
		h := NewCartHandler(&fakeCartService{})
		r := httptest.NewRequest(http.MethodGet, "/api/cart/", nil)
		w := httptest.NewRecorder()

		h.GetCart(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		h := NewCartHandler(&fakeCartService{})
		r := httptest.NewRequest(http.MethodGet, "/api/cart/cust-1", nil)
		r.SetPathValue("customerId", "cust-1")
		w := httptest.NewRecorder()

		h.GetCart(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeCartService{getCartFunc: func(ctx context.Context, customerID string) (*cart.Cart, error) {
			return nil, errors.New("db error")
		}}
		h := NewCartHandler(svc)
		r := httptest.NewRequest(http.MethodGet, "/api/cart/cust-1", nil)
		r.SetPathValue("customerId", "cust-1")
		w := httptest.NewRecorder()

		h.GetCart(w, r)

		require.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		expected := &cart.Cart{ID: "c1", CustomerID: "cust-1", Lines: []cart.Line{
			{ProductID: "p1", Size: "M", Quantity: 2, PriceAtAdded: 500},
		}}
		svc := &fakeCartService{getCartFunc: func(ctx context.Context, customerID string) (*cart.Cart, error) {
			return expected, nil
		}}
		h := NewCartHandler(svc)
		r := httptest.NewRequest(http.MethodGet, "/api/cart/cust-1", nil)
		r.SetPathValue("customerId", "cust-1")
		w := httptest.NewRecorder()

		h.GetCart(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var resp cart.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "c1", resp.ID)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "p1", resp.Lines[0].ProductID)
	})
}

func TestAddItemHandler(t *testing.T) {
	newRequest := func(body string) (*http.Request, *httptest.ResponseRecorder) {
		r := httptest.NewRequest(http.MethodPost, "/api/cart/cust-1/items", bytes.NewBufferString(body))
		r.SetPathValue("customerId", "cust-1")
		return r, httptest.NewRecorder()
	}

	t.Run("invalid json", func(t *testing.T) {
		h := NewCartHandler(&fakeCartService{})
		r, w := newRequest("{")

		h.AddItem(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		svc := &fakeCartService{addItemFunc: func(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error) {
			return nil, cart.ErrInvalidQuantity
		}}
		h := NewCartHandler(svc)
		r, w := newRequest(`{"productId":"p1","size":"M","quantity":0}`)

		h.AddItem(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := &fakeCartService{addItemFunc: func(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error) {
			return nil, catalog.ErrProductNotFound
		}}
		h := NewCartHandler(svc)
		r, w := newRequest(`{"productId":"nope","size":"M","quantity":1}`)

		h.AddItem(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeCartService{addItemFunc: func(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error) {
			assert.Equal(t, "cust-1", customerID)
			assert.Equal(t, "p1", productID)
			assert.Equal(t, "M", size)
			assert.Equal(t, 2, quantity)
			return &cart.Cart{ID: "c1", CustomerID: customerID, Lines: []cart.Line{
				{ProductID: productID, Size: size, Quantity: quantity, PriceAtAdded: 500},
			}}, nil
		}}
		h := NewCartHandler(svc)
		r, w := newRequest(`{"productId":"p1","size":"M","quantity":2}`)

		h.AddItem(w, r)

		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestUpdateQuantityHandler_LineMissing(t *testing.T) {
	svc := &fakeCartService{updateQuantityFunc: func(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error) {
		return nil, cart.ErrItemNotInCart
	}}
	h := NewCartHandler(svc)
	r := httptest.NewRequest(http.MethodPatch, "/api/cart/cust-1/items/quantity", bytes.NewBufferString(`{"productId":"p1","size":"L","quantity":2}`))
	r.SetPathValue("customerId", "cust-1")
	w := httptest.NewRecorder()

	h.UpdateQuantity(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeSizeHandler(t *testing.T) {
	t.Run("item missing", func(t *testing.T) {
		svc := &fakeCartService{changeSizeFunc: func(ctx context.Context, customerID, productID, oldSize, newSize string) (*cart.Cart, error) {
			return nil, cart.ErrItemNotInCart
		}}
		h := NewCartHandler(svc)
		r := httptest.NewRequest(http.MethodPatch, "/api/cart/cust-1/items/size", bytes.NewBufferString(`{"productId":"p1","oldSize":"M","newSize":"L"}`))
		r.SetPathValue("customerId", "cust-1")
		w := httptest.NewRecorder()

		h.ChangeSize(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeCartService{changeSizeFunc: func(ctx context.Context, customerID, productID, oldSize, newSize string) (*cart.Cart, error) {
			assert.Equal(t, "M", oldSize)
			assert.Equal(t, "L", newSize)
			return &cart.Cart{ID: "c1", CustomerID: customerID}, nil
		}}
		h := NewCartHandler(svc)
		r := httptest.NewRequest(http.MethodPatch, "/api/cart/cust-1/items/size", bytes.NewBufferString(`{"productId":"p1","oldSize":"M","newSize":"L"}`))
		r.SetPathValue("customerId", "cust-1")
		w := httptest.NewRecorder()

		h.ChangeSize(w, r)

		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestReplaceSelectionHandler_EmptySelection(t *testing.T) {
	svc := &fakeCartService{replaceSelectionFunc: func(ctx context.Context, customerID string, keys []cart.LineKey) (*cart.Cart, error) {
		return nil, cart.ErrEmptySelection
	}}
	h := NewCartHandler(svc)
	r := httptest.NewRequest(http.MethodPut, "/api/cart/cust-1/selection", bytes.NewBufferString(`{"items":[]}`))
	r.SetPathValue("customerId", "cust-1")
	w := httptest.NewRecorder()

	h.ReplaceSelection(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
