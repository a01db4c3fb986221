package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/cart"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/catalog"
)

// CartService is what the cart handler needs from internal/cart.Service.
type CartService interface {
	GetCart(ctx context.Context, customerID string) (*cart.Cart, error)
	AddItem(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, customerID string, key cart.LineKey) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, customerID, productID, size string, quantity int) (*cart.Cart, error)
	ChangeSize(ctx context.Context, customerID, productID, oldSize, newSize string) (*cart.Cart, error)
	ReplaceSelection(ctx context.Context, customerID string, keys []cart.LineKey) (*cart.Cart, error)
}

type CartHandler struct {
	svc CartService
}

func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.GetCart(ctx, customerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	var body struct {
		ProductID string `json:"productId"`
		Size      string `json:"size"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.AddItem(ctx, customerID, body.ProductID, body.Size, body.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrProductNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	var body cart.LineKey
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.RemoveItem(ctx, customerID, body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	var body struct {
		ProductID string `json:"productId"`
		Size      string `json:"size"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.UpdateQuantity(ctx, customerID, body.ProductID, body.Size, body.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, cart.ErrItemNotInCart):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update quantity")
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ChangeSize(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	var body struct {
		ProductID string `json:"productId"`
		OldSize   string `json:"oldSize"`
		NewSize   string `json:"newSize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.ChangeSize(ctx, customerID, body.ProductID, body.OldSize, body.NewSize)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrItemNotInCart):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to change size")
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ReplaceSelection(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	var body struct {
		Items []cart.LineKey `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.ReplaceSelection(ctx, customerID, body.Items)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrEmptySelection):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, cart.ErrItemNotInCart):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to replace selection")
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}
