package events

import "time"

const (
	TypeOrder  = "order"
	TypeCancel = "cancel"
)

// Notification is the contract consumed by the notification sink.
type Notification struct {
	Type       string    `json:"type"`
	CustomerID string    `json:"customerId"`
	OrderID    string    `json:"orderId"`
	Summary    string    `json:"summary"`
	Timestamp  time.Time `json:"timestamp"`
}
