package http

import (
	"encoding/json"
	"net/http"
)

func NewRouter(cartH *CartHandler, checkoutH *CheckoutHandler, orderH *OrderHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler)

	mux.HandleFunc("GET /api/cart/{customerId}", cartH.GetCart)
	mux.HandleFunc("POST /api/cart/{customerId}/items", cartH.AddItem)
	mux.HandleFunc("DELETE /api/cart/{customerId}/items", cartH.RemoveItem)
	mux.HandleFunc("PATCH /api/cart/{customerId}/items/quantity", cartH.UpdateQuantity)
	mux.HandleFunc("PATCH /api/cart/{customerId}/items/size", cartH.ChangeSize)
	mux.HandleFunc("PUT /api/cart/{customerId}/selection", cartH.ReplaceSelection)

	mux.HandleFunc("POST /api/checkout/{customerId}", checkoutH.Checkout)

	mux.HandleFunc("GET /api/customers/{customerId}/orders", orderH.ListOrders)
	mux.HandleFunc("GET /api/customers/{customerId}/orders/{orderId}", orderH.GetOrder)
	mux.HandleFunc("PATCH /api/customers/{customerId}/orders/{orderId}/payment", orderH.AttachReceipt)

	mux.HandleFunc("PATCH /api/admin/orders/{orderId}/status", orderH.UpdateStatus)

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": "storefront"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
