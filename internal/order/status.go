package order

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions maps each status to its legal targets. Delivered and
// cancelled are terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: nil,
	StatusCancelled: nil,
}

func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func CanTransition(from, to Status) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

var ErrMissingTracking = errors.New("missing delivery tracking")

// InvalidTransitionError names the offending pair so the caller can decide
// whether to retry with different input or treat it as permanent.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// TrackingRequest is required when transitioning to shipped.
type TrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier"`
}

// Transition moves the order to target and applies the payment/tracking
// side effects coupled to it:
//
//   - confirmed marks the payment paid (confirmation is the administrative
//     payment acknowledgment; no gateway callback is modeled),
//   - shipped requires tracking info and records it,
//   - cancelled voids the payment intent regardless of its prior state.
//
// The order is only mutated on success.
func Transition(o *Order, target Status, extra *TrackingRequest) error {
	if !CanTransition(o.Status, target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}

	switch target {
	case StatusConfirmed:
		now := time.Now().UTC()
		o.Payment.Status = PaymentPaid
		o.Payment.PaidAt = &now
	case StatusShipped:
		if extra == nil || extra.TrackingNumber == "" || extra.Carrier == "" {
			return ErrMissingTracking
		}
		o.Tracking = &DeliveryTracking{
			TrackingNumber: extra.TrackingNumber,
			Carrier:        extra.Carrier,
			Status:         string(StatusShipped),
		}
	case StatusCancelled:
		o.Payment.Status = PaymentFailed
	}

	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return nil
}
