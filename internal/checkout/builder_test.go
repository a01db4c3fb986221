package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/cart"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/order"
)

type fakeCartRepo struct {
	cart *cart.Cart
	err  error
}

func (f *fakeCartRepo) GetCart(ctx context.Context, customerID string) (*cart.Cart, error) {
	return f.cart, f.err
}

func (f *fakeCartRepo) Mutate(ctx context.Context, customerID string, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	return f.cart, nil
}

func (f *fakeCartRepo) ClearLines(ctx context.Context, customerID string) error { return nil }

type fakeOrderRepo struct {
	created   *order.Order
	createErr error
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = o
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	return f.created, nil
}

func (f *fakeOrderRepo) GetForCustomer(ctx context.Context, orderID, customerID string) (*order.Order, error) {
	return f.created, nil
}

func (f *fakeOrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, o *order.Order, prev order.Status) error {
	return nil
}

func (f *fakeOrderRepo) AttachReceipt(ctx context.Context, orderID, transactionID, receiptImage string) error {
	return nil
}

type fakeNotifier struct {
	notified int
	err      error
}

func (f *fakeNotifier) OrderCreated(ctx context.Context, o *order.Order) error {
	f.notified++
	return f.err
}

func validShipping() order.ShippingInfo {
	return order.ShippingInfo{
		RecipientName: "Somchai J.",
		Phone:         "0812345678",
		Address:       "99/1 Sukhumvit Rd",
		Province:      "Bangkok",
		PostalCode:    "10110",
	}
}

func stockedCart() *cart.Cart {
	return &cart.Cart{
		ID:         "c1",
		CustomerID: "cust-1",
		Lines: []cart.Line{
			{ProductID: "p1", Name: "Gold Pendant", Size: "L", Quantity: 3, PriceAtAdded: 500, Images: []string{"a.jpg"}},
			{ProductID: "p2", Name: "Silver Ring", Size: "S", Quantity: 1, PriceAtAdded: 200},
		},
	}
}

func newTestBuilder(carts *fakeCartRepo, orders *fakeOrderRepo, n *fakeNotifier) *Builder {
	return NewBuilder(carts, orders, n, 50, log.New(io.Discard, "", 0))
}

func TestBuildOrder_SnapshotsCartLines(t *testing.T) {
	carts := &fakeCartRepo{cart: stockedCart()}
	orders := &fakeOrderRepo{}
	notifier := &fakeNotifier{}
	b := newTestBuilder(carts, orders, notifier)

	o, err := b.BuildOrder(context.Background(), "cust-1", validShipping(), "bank_transfer", "NEWYEAR")
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Gold Pendant", o.Items[0].Name)
	assert.Equal(t, "L", o.Items[0].Size)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, 500.0, o.Items[0].PriceAtPurchase)

	// 3*500 + 1*200 + 50 shipping
	assert.Equal(t, 1750.0, o.Total)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentPending, o.Payment.Status)
	assert.Equal(t, "bank_transfer", o.Payment.Method)
	assert.Equal(t, "NEWYEAR", o.CouponApplied)

	require.NotNil(t, orders.created)
	assert.Equal(t, 1, notifier.notified)
}

func TestBuildOrder_CopyIsByValue(t *testing.T) {
	c := stockedCart()
	carts := &fakeCartRepo{cart: c}
	orders := &fakeOrderRepo{}
	b := newTestBuilder(carts, orders, &fakeNotifier{})

	o, err := b.BuildOrder(context.Background(), "cust-1", validShipping(), "", "")
	require.NoError(t, err)

	// Mutating the cart after checkout must not reach the order.
	c.Lines[0].PriceAtAdded = 999
	c.Lines[0].Quantity = 99
	c.Lines[0].Images[0] = "tampered.jpg"

	assert.Equal(t, 500.0, o.Items[0].PriceAtPurchase)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, "a.jpg", o.Items[0].Images[0])
}

func TestBuildOrder_DefaultPaymentMethod(t *testing.T) {
	b := newTestBuilder(&fakeCartRepo{cart: stockedCart()}, &fakeOrderRepo{}, &fakeNotifier{})

	o, err := b.BuildOrder(context.Background(), "cust-1", validShipping(), "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPaymentMethod, o.Payment.Method)
}

func TestBuildOrder_EmptyCart(t *testing.T) {
	cases := []struct {
		name string
		cart *cart.Cart
	}{
		{"no cart", nil},
		{"cart with no lines", &cart.Cart{ID: "c1", CustomerID: "cust-1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := &fakeOrderRepo{}
			b := newTestBuilder(&fakeCartRepo{cart: tc.cart}, orders, &fakeNotifier{})

			_, err := b.BuildOrder(context.Background(), "cust-1", validShipping(), "", "")
			require.ErrorIs(t, err, ErrNoItems)
			assert.Nil(t, orders.created)
		})
	}
}

func TestBuildOrder_MissingShippingFields(t *testing.T) {
	b := newTestBuilder(&fakeCartRepo{cart: stockedCart()}, &fakeOrderRepo{}, &fakeNotifier{})

	shipping := validShipping()
	shipping.Phone = ""

	_, err := b.BuildOrder(context.Background(), "cust-1", shipping, "", "")
	require.ErrorIs(t, err, ErrMissingShippingInfo)
}

func TestBuildOrder_NotificationFailureDoesNotAbort(t *testing.T) {
	orders := &fakeOrderRepo{}
	notifier := &fakeNotifier{err: errors.New("sink unreachable")}
	b := newTestBuilder(&fakeCartRepo{cart: stockedCart()}, orders, notifier)

	o, err := b.BuildOrder(context.Background(), "cust-1", validShipping(), "", "")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.NotNil(t, orders.created, "the order is the durable record of intent")
}

func TestBuildOrder_CreateFailureSurfaces(t *testing.T) {
	notifier := &fakeNotifier{}
	b := newTestBuilder(&fakeCartRepo{cart: stockedCart()}, &fakeOrderRepo{createErr: errors.New("db down")}, notifier)

	_, err := b.BuildOrder(context.Background(), "cust-1", validShipping(), "", "")
	require.Error(t, err)
	assert.Zero(t, notifier.notified, "no notification without a persisted order")
}
