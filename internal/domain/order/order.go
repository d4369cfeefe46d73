// Package order implements the order placement workflow: business-day
// gating, stock checks, offer application, and amount-range enforcement.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrNotAuthorized is returned when an order belongs to another user.
	ErrNotAuthorized = errors.New("not authorized for this order")
	// ErrClosedDay is returned when placement is attempted on a Sunday or a
	// configured holiday.
	ErrClosedDay = errors.New("orders cannot be placed on holidays or Sundays")
	// ErrInsufficientStock is returned when the requested quantity exceeds
	// the product's available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// AmountOutOfRangeError indicates the final amount fell outside the allowed
// currency range after discount.
type AmountOutOfRangeError struct {
	Amount   decimal.Decimal
	Min, Max decimal.Decimal
}

func (e *AmountOutOfRangeError) Error() string {
	return "final amount " + e.Amount.String() + " must be between " +
		e.Min.String() + " and " + e.Max.String()
}

// Order is a single placed order. FinalAmount is always
// TotalAmount - DiscountAmount.
type Order struct {
	ID             int64
	UserID         int64
	ProductID      int64
	Quantity       int
	OfferCode      string
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	CreatedAt      time.Time
}

// Repository defines persistence operations for orders.
//
// Create and AppendStock run the order write and the conditional stock
// decrement in one transaction: the decrement fails with
// ErrInsufficientStock when stock is too low, and the unique
// (user_id, offer_code) constraint surfaces as offer.ErrAlreadyUsed.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	Update(ctx context.Context, o *Order) error
	// AppendStock persists the updated order and decrements qty units of
	// the given product's stock atomically.
	AppendStock(ctx context.Context, o *Order, productID int64, qty int) error
	Delete(ctx context.Context, id int64) error
	UserHasUsedCode(ctx context.Context, userID int64, code string) (bool, error)
}
