package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/order"
)

// StatusNotifier receives order lifecycle events; emission is best-effort.
type StatusNotifier interface {
	OrderCancelled(ctx context.Context, o *order.Order) error
	StatusChanged(ctx context.Context, o *order.Order, from order.Status) error
}

type OrderHandler struct {
	repo     order.Repository
	notifier StatusNotifier
	logger   *log.Logger
}

func NewOrderHandler(repo order.Repository, notifier StatusNotifier, logger *log.Logger) *OrderHandler {
	return &OrderHandler{repo: repo, notifier: notifier, logger: logger}
}

// GetOrder serves a customer's own order; an order id owned by someone else
// reads as not found.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	orderID := r.PathValue("orderId")
	if customerID == "" || orderID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId or orderId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.repo.GetForCustomer(ctx, orderID, customerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// AttachReceipt records externally supplied payment evidence while the
// payment is still pending.
func (h *OrderHandler) AttachReceipt(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	orderID := r.PathValue("orderId")
	if customerID == "" || orderID == "" {
		writeError(w, http.StatusBadRequest, "missing customerId or orderId")
		return
	}

	var body struct {
		TransactionID string `json:"transactionId"`
		ReceiptImage  string `json:"receiptImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.TransactionID == "" && body.ReceiptImage == "" {
		writeError(w, http.StatusBadRequest, "missing payment evidence")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.repo.GetForCustomer(ctx, orderID, customerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if err := h.repo.AttachReceipt(ctx, orderID, body.TransactionID, body.ReceiptImage); err != nil {
		if errors.Is(err, order.ErrStatusConflict) {
			writeError(w, http.StatusConflict, "payment already settled")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to attach receipt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "receipt recorded"})
}

// UpdateStatus is the staff entry point into the status machine.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing orderId")
		return
	}

	var body struct {
		Status         string `json:"status"`
		TrackingNumber string `json:"trackingNumber"`
		Carrier        string `json:"carrier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	target := order.Status(body.Status)
	if !target.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.repo.GetByID(ctx, orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	from := o.Status
	if err := order.Transition(o, target, &order.TrackingRequest{
		TrackingNumber: body.TrackingNumber,
		Carrier:        body.Carrier,
	}); err != nil {
		var invalid *order.InvalidTransitionError
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusConflict, invalid.Error())
		case errors.Is(err, order.ErrMissingTracking):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to transition order")
		}
		return
	}

	if err := h.repo.UpdateStatus(ctx, o, from); err != nil {
		if errors.Is(err, order.ErrStatusConflict) {
			writeError(w, http.StatusConflict, "order status changed concurrently")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save order")
		return
	}

	h.notify(ctx, o, from, target)

	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) notify(ctx context.Context, o *order.Order, from, target order.Status) {
	var err error
	if target == order.StatusCancelled {
		err = h.notifier.OrderCancelled(ctx, o)
	} else {
		err = h.notifier.StatusChanged(ctx, o, from)
	}
	if err != nil {
		h.logger.Printf("status notification failed for %s: %v", o.ID, err)
	}
}
