package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrStatusConflict means the status row changed between read and write;
// the caller should re-read and retry the transition.
var ErrStatusConflict = errors.New("order status changed concurrently")

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	GetForCustomer(ctx context.Context, orderID, customerID string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	UpdateStatus(ctx context.Context, o *Order, prev Status) error
	AttachReceipt(ctx context.Context, orderID, transactionID, receiptImage string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

const orderColumns = `id, customer_id, recipient_name, phone, address, subdistrict, district, province, postal_code,
         payment_method, payment_status, transaction_id, paid_at, receipt_image,
         order_status, tracking_number, carrier, tracking_status, coupon_code, total, created_at, updated_at`

func (r *repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var trackingNumber, carrier, trackingStatus string
	if o.Tracking != nil {
		trackingNumber = o.Tracking.TrackingNumber
		carrier = o.Tracking.Carrier
		trackingStatus = o.Tracking.Status
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_id, recipient_name, phone, address, subdistrict, district, province, postal_code,
             payment_method, payment_status, transaction_id, paid_at, receipt_image,
             order_status, tracking_number, carrier, tracking_status, coupon_code, total, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		o.ID, o.CustomerID, o.Shipping.RecipientName, o.Shipping.Phone, o.Shipping.Address,
		o.Shipping.Subdistrict, o.Shipping.District, o.Shipping.Province, o.Shipping.PostalCode,
		o.Payment.Method, string(o.Payment.Status), o.Payment.TransactionID, o.Payment.PaidAt, o.Payment.ReceiptImage,
		string(o.Status), trackingNumber, carrier, trackingStatus, o.CouponApplied, o.Total, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, name, size, quantity, price_at_purchase, images)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), o.ID, it.ProductID, it.Name, it.Size, it.Quantity, it.PriceAtPurchase, pq.Array(it.Images),
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	return r.scanOrderWithItems(ctx, row)
}

// GetForCustomer loads an order only when it is owned by the requesting
// customer; anything else reads as not found.
func (r *repo) GetForCustomer(ctx context.Context, orderID, customerID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND customer_id = $2`, orderID, customerID)
	return r.scanOrderWithItems(ctx, row)
}

func (r *repo) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// UpdateStatus persists the status machine's result. The write is guarded
// on the previous status so a concurrent transition surfaces as
// ErrStatusConflict instead of being silently overwritten.
func (r *repo) UpdateStatus(ctx context.Context, o *Order, prev Status) error {
	var trackingNumber, carrier, trackingStatus string
	if o.Tracking != nil {
		trackingNumber = o.Tracking.TrackingNumber
		carrier = o.Tracking.Carrier
		trackingStatus = o.Tracking.Status
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders
         SET order_status = $1, payment_status = $2, paid_at = $3,
             tracking_number = $4, carrier = $5, tracking_status = $6, updated_at = NOW()
         WHERE id = $7 AND order_status = $8`,
		string(o.Status), string(o.Payment.Status), o.Payment.PaidAt,
		trackingNumber, carrier, trackingStatus, o.ID, string(prev),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// AttachReceipt records externally supplied payment evidence while the
// payment is still pending.
func (r *repo) AttachReceipt(ctx context.Context, orderID, transactionID, receiptImage string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET transaction_id = $1, receipt_image = $2, updated_at = NOW()
         WHERE id = $3 AND payment_status = $4`,
		transactionID, receiptImage, orderID, string(PaymentPending),
	)
	if err != nil {
		return fmt.Errorf("attach receipt: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *repo) scanOrderWithItems(ctx context.Context, row *sql.Row) (*Order, error) {
	var o Order
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repo) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, name, size, quantity, price_at_purchase, images
         FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Size, &it.Quantity, &it.PriceAtPurchase, pq.Array(&it.Images)); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, o *Order) error {
	var (
		paymentStatus, orderStatus              string
		paidAt                                  sql.NullTime
		trackingNumber, carrier, trackingStatus string
	)

	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Shipping.RecipientName, &o.Shipping.Phone, &o.Shipping.Address,
		&o.Shipping.Subdistrict, &o.Shipping.District, &o.Shipping.Province, &o.Shipping.PostalCode,
		&o.Payment.Method, &paymentStatus, &o.Payment.TransactionID, &paidAt, &o.Payment.ReceiptImage,
		&orderStatus, &trackingNumber, &carrier, &trackingStatus, &o.CouponApplied, &o.Total,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return err
	}

	o.Payment.Status = PaymentStatus(paymentStatus)
	if paidAt.Valid {
		t := paidAt.Time
		o.Payment.PaidAt = &t
	}
	o.Status = Status(orderStatus)
	if trackingNumber != "" || carrier != "" {
		o.Tracking = &DeliveryTracking{
			TrackingNumber: trackingNumber,
			Carrier:        carrier,
			Status:         trackingStatus,
		}
	}
	return nil
}
