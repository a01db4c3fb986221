package order

import "time"

// Item is a frozen copy of a cart line. Once the owning order exists it is
// never mutated; later catalog or cart changes cannot reach it.
type Item struct {
	ProductID       string   `json:"productId"`
	Name            string   `json:"name"`
	Size            string   `json:"size"`
	Quantity        int      `json:"quantity"`
	PriceAtPurchase float64  `json:"priceAtPurchase"`
	Images          []string `json:"images"`
}

type ShippingInfo struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Subdistrict   string `json:"subdistrict,omitempty"`
	District      string `json:"district,omitempty"`
	Province      string `json:"province,omitempty"`
	PostalCode    string `json:"postalCode"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment records a payment status supplied externally (e.g. a manually
// uploaded receipt); there is no gateway integration here.
type Payment struct {
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	ReceiptImage  string        `json:"receiptImage,omitempty"`
}

type DeliveryTracking struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier"`
	Status         string `json:"status"`
}

// Order is created once by checkout and then mutated only through the
// status machine: status, payment sub-state and tracking change, the items
// never do.
type Order struct {
	ID            string            `json:"orderId"`
	CustomerID    string            `json:"customerId"`
	Items         []Item            `json:"items"`
	Shipping      ShippingInfo      `json:"shippingInfo"`
	Payment       Payment           `json:"payment"`
	Status        Status            `json:"orderStatus"`
	Tracking      *DeliveryTracking `json:"deliveryTracking,omitempty"`
	CouponApplied string            `json:"couponApplied,omitempty"`
	Total         float64           `json:"total"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
