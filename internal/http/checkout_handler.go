package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/checkout"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/order"
)

type OrderBuilder interface {
	BuildOrder(ctx context.Context, customerID string, shipping order.ShippingInfo, paymentMethod, coupon string) (*order.Order, error)
}

type CartClearer interface {
	Clear(ctx context.Context, customerID string) error
}

type CheckoutHandler struct {
	builder OrderBuilder
	carts   CartClearer
	logger  *log.Logger
}

func NewCheckoutHandler(builder OrderBuilder, carts CartClearer, logger *log.Logger) *CheckoutHandler {
	return &CheckoutHandler{builder: builder, carts: carts, logger: logger}
}

// Checkout snapshots the cart into an order, then clears the cart. The two
// writes are independent; a failed clear leaves a stale cart behind but the
// order stands.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	var body struct {
		ShippingInfo  order.ShippingInfo `json:"shippingInfo"`
		PaymentMethod string             `json:"paymentMethod"`
		Coupon        string             `json:"couponApplied"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.builder.BuildOrder(ctx, customerID, body.ShippingInfo, body.PaymentMethod, body.Coupon)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoItems), errors.Is(err, checkout.ErrMissingShippingInfo):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	if err := h.carts.Clear(ctx, customerID); err != nil {
		h.logger.Printf("clear cart after checkout failed for %s: %v", customerID, err)
	}

	writeJSON(w, http.StatusCreated, o)
}
