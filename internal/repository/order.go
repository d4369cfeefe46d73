package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/offer"
	"github.com/xenking/storefront/internal/domain/order"
)

const (
	// Conditional decrement: affects zero rows when stock is too low, which
	// is the authoritative out-of-stock signal under concurrency.
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	createOrderSQL = `INSERT INTO orders
		(user_id, product_id, quantity, offer_code, total_amount, discount_amount, final_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	getOrderByIDSQL = `SELECT id, user_id, product_id, quantity, offer_code,
		total_amount, discount_amount, final_amount, created_at
		FROM orders WHERE id = $1`

	updateOrderSQL = `UPDATE orders
		SET product_id = $2, quantity = $3, total_amount = $4, discount_amount = $5, final_amount = $6
		WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	userUsedCodeSQL = `SELECT EXISTS (
		SELECT 1 FROM orders WHERE user_id = $1 AND offer_code = $2
	)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and decrements the product stock in one
// transaction. Returns order.ErrInsufficientStock when the conditional
// decrement matches no row, and offer.ErrAlreadyUsed when the
// (user_id, offer_code) uniqueness constraint trips.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, decrementStockSQL, o.ProductID, o.Quantity)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %d: %w", o.ProductID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrInsufficientStock
	}

	err = tx.QueryRow(ctx, createOrderSQL,
		o.UserID, o.ProductID, o.Quantity, nullableCode(o.OfferCode),
		o.TotalAmount, o.DiscountAmount, o.FinalAmount, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		if uniqueViolation(err, "orders_user_offer_code_uniq") {
			return offer.ErrAlreadyUsed
		}
		return fmt.Errorf("creating order for user %d: %w", o.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order: %w", err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return &o, nil
}

// Update persists the mutable order fields and derived amounts.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID, o.ProductID, o.Quantity, o.TotalAmount, o.DiscountAmount, o.FinalAmount,
	)
	if err != nil {
		return fmt.Errorf("updating order %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// AppendStock persists the updated order and decrements qty units of the
// given product's stock in one transaction.
func (r *OrderRepository) AppendStock(ctx context.Context, o *order.Order, productID int64, qty int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, decrementStockSQL, productID, qty)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrInsufficientStock
	}

	tag, err = tx.Exec(ctx, updateOrderSQL,
		o.ID, o.ProductID, o.Quantity, o.TotalAmount, o.DiscountAmount, o.FinalAmount,
	)
	if err != nil {
		return fmt.Errorf("updating order %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order update: %w", err)
	}
	return nil
}

// Delete removes the order row. Stock is not restored.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UserHasUsedCode reports whether any order row for the user carries the
// given offer code. The lookup is a plain string match, independent of
// which product the offer applied to.
func (r *OrderRepository) UserHasUsedCode(ctx context.Context, userID int64, code string) (bool, error) {
	var used bool
	err := r.pool.QueryRow(ctx, userUsedCodeSQL, userID, code).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("checking offer usage for user %d: %w", userID, err)
	}
	return used, nil
}

func nullableCode(code string) *string {
	if code == "" {
		return nil
	}
	return &code
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                    order.Order
		code                 *string
		total, discount, fin decimal.Decimal
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &code,
		&total, &discount, &fin, &o.CreatedAt)
	if code != nil {
		o.OfferCode = *code
	}
	o.TotalAmount = total
	o.DiscountAmount = discount
	o.FinalAmount = fin
	return o, err
}
