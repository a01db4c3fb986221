package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository interface {
	GetCart(ctx context.Context, customerID string) (*Cart, error)
	Mutate(ctx context.Context, customerID string, fn func(c *Cart) error) (*Cart, error)
	ClearLines(ctx context.Context, customerID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetCart(ctx context.Context, customerID string) (*Cart, error) {
	const cartQuery = `SELECT id, customer_id, COALESCE(promotion_code, ''), updated_at FROM carts WHERE customer_id = $1`

	var c Cart
	err := r.db.QueryRowContext(ctx, cartQuery, customerID).Scan(&c.ID, &c.CustomerID, &c.PromotionCode, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// caller (handler) can turn this into 404
			return nil, nil
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	lines, err := loadLines(ctx, r.db, c.ID)
	if err != nil {
		return nil, err
	}
	c.Lines = lines

	return &c, nil
}

// Mutate runs fn against the customer's cart inside a single transaction.
// The cart row is created lazily and the upsert takes a row lock, so two
// concurrent mutations of the same cart serialize instead of losing one
// line rewrite. An error from fn rolls everything back, including the lazy
// insert.
func (r *repo) Mutate(ctx context.Context, customerID string, fn func(c *Cart) error) (*Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsertCartSQL = `
INSERT INTO carts (id, customer_id, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (customer_id) DO UPDATE
SET updated_at = NOW()
RETURNING id, customer_id, COALESCE(promotion_code, ''), updated_at
`
	var c Cart
	if err = tx.QueryRowContext(ctx, upsertCartSQL, uuid.NewString(), customerID).
		Scan(&c.ID, &c.CustomerID, &c.PromotionCode, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert cart: %w", err)
	}

	var lines []Line
	if lines, err = loadLines(ctx, tx, c.ID); err != nil {
		return nil, err
	}
	c.Lines = lines

	if err = fn(&c); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, c.ID); err != nil {
		return nil, fmt.Errorf("delete cart_lines: %w", err)
	}

	for i, ln := range c.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cart_lines (id, cart_id, product_id, name, images, size, quantity, price_at_added, position)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.NewString(), c.ID, ln.ProductID, ln.Name, pq.Array(ln.Images), ln.Size, ln.Quantity, ln.PriceAtAdded, i,
		)
		if err != nil {
			return nil, fmt.Errorf("insert cart_line: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE carts SET promotion_code = NULLIF($2, ''), updated_at = NOW() WHERE id = $1`,
		c.ID, c.PromotionCode,
	); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &c, nil
}

// ClearLines empties the cart but keeps the cart row; the cart itself is
// never deleted in normal operation.
func (r *repo) ClearLines(ctx context.Context, customerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE cart_id = (SELECT id FROM carts WHERE customer_id = $1)`,
		customerID,
	)
	if err != nil {
		return fmt.Errorf("clear cart_lines: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadLines(ctx context.Context, q querier, cartID string) ([]Line, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT product_id, name, images, size, quantity, price_at_added
         FROM cart_lines WHERE cart_id = $1 ORDER BY position`, cartID)
	if err != nil {
		return nil, fmt.Errorf("select cart_lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var ln Line
		if err := rows.Scan(&ln.ProductID, &ln.Name, pq.Array(&ln.Images), &ln.Size, &ln.Quantity, &ln.PriceAtAdded); err != nil {
			return nil, fmt.Errorf("scan cart_line: %w", err)
		}
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return lines, nil
}
