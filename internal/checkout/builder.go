// Package checkout turns the customer's stored cart into an immutable
// order. The copy is by value: later cart or catalog changes never reach a
// placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/cart"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/order"
)

var (
	ErrNoItems             = errors.New("no items for checkout")
	ErrMissingShippingInfo = errors.New("missing required shipping fields")
)

const DefaultShippingFee = 50.0

// DefaultPaymentMethod is assumed when the request names none.
const DefaultPaymentMethod = "online"

// Notifier receives the order-created event. Emission is best-effort; a
// failure is logged and never rolls back order creation.
type Notifier interface {
	OrderCreated(ctx context.Context, o *order.Order) error
}

type Builder struct {
	carts       cart.Repository
	orders      order.Repository
	notifier    Notifier
	shippingFee float64
	logger      *log.Logger
}

func NewBuilder(carts cart.Repository, orders order.Repository, notifier Notifier, shippingFee float64, logger *log.Logger) *Builder {
	return &Builder{
		carts:       carts,
		orders:      orders,
		notifier:    notifier,
		shippingFee: shippingFee,
		logger:      logger,
	}
}

// BuildOrder snapshots the customer's current cart lines into a new pending
// order. It reads the cart once and writes the order once; clearing the
// cart is the caller's responsibility.
func (b *Builder) BuildOrder(ctx context.Context, customerID string, shipping order.ShippingInfo, paymentMethod, coupon string) (*order.Order, error) {
	if shipping.RecipientName == "" || shipping.Phone == "" || shipping.Address == "" || shipping.PostalCode == "" {
		return nil, ErrMissingShippingInfo
	}

	c, err := b.carts.GetCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil || len(c.Lines) == 0 {
		return nil, ErrNoItems
	}

	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	items := make([]order.Item, 0, len(c.Lines))
	total := 0.0
	for _, ln := range c.Lines {
		items = append(items, order.Item{
			ProductID:       ln.ProductID,
			Name:            ln.Name,
			Size:            ln.Size,
			Quantity:        ln.Quantity,
			PriceAtPurchase: ln.PriceAtAdded,
			Images:          append([]string(nil), ln.Images...),
		})
		total += float64(ln.Quantity) * ln.PriceAtAdded
	}
	total += b.shippingFee

	now := time.Now().UTC()
	o := &order.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Items:      items,
		Shipping:   shipping,
		Payment: order.Payment{
			Method: paymentMethod,
			Status: order.PaymentPending,
		},
		Status:        order.StatusPending,
		CouponApplied: coupon,
		Total:         total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := b.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is the durable record of intent; it must not be lost over a
	// best-effort side channel.
	if err := b.notifier.OrderCreated(ctx, o); err != nil {
		b.logger.Printf("order created notification failed for %s: %v", o.ID, err)
	}

	return o, nil
}
