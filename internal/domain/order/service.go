package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/offer"
	"github.com/xenking/storefront/internal/domain/product"
)

// AmountRange bounds the final amount of every order, in currency units.
type AmountRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// DefaultAmountRange is the 99..4999 window applied when no range is configured.
func DefaultAmountRange() AmountRange {
	return AmountRange{
		Min: decimal.NewFromInt(99),
		Max: decimal.NewFromInt(4999),
	}
}

func (r AmountRange) contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(r.Min) && amount.LessThanOrEqual(r.Max)
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	ProductID int64
	Quantity  int
	OfferCode string
}

// UpdateOrderRequest holds the mutable order fields. Nil fields are left
// unchanged.
type UpdateOrderRequest struct {
	ProductID *int64
	Quantity  *int
}

// Service encapsulates the order workflow business rules.
type Service struct {
	products product.Repository
	offers   offer.Validator
	orders   Repository
	calendar *Calendar
	amounts  AmountRange
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the service clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an order Service. The clock defaults to time.Now.
func NewService(
	products product.Repository,
	offers offer.Validator,
	orders Repository,
	calendar *Calendar,
	amounts AmountRange,
	opts ...Option,
) *Service {
	s := &Service{
		products: products,
		offers:   offers,
		orders:   orders,
		calendar: calendar,
		amounts:  amounts,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder runs the placement workflow: business-day gate, product and
// stock checks, optional offer application, amount-range enforcement, and
// transactional persistence. Each step is an early exit.
//
// The stock pre-check here gives a friendly error; the authoritative check is
// the conditional decrement inside Repository.Create, so two concurrent
// placements cannot oversell.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, req PlaceOrderRequest) (*Order, error) {
	now := s.now().UTC()
	if s.calendar.Closed(now) {
		return nil, ErrClosedDay
	}

	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > p.Stock {
		return nil, ErrInsufficientStock
	}

	subtotal := p.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

	discount := decimal.Zero
	if req.OfferCode != "" {
		off, err := s.offers.Validate(ctx, req.OfferCode, userID)
		if err != nil {
			return nil, err
		}
		if !off.AppliesTo(req.ProductID) {
			return nil, offer.ErrNotApplicable
		}
		discount = offer.Discount(subtotal, off)
	}

	final := subtotal.Sub(discount)
	if !s.amounts.contains(final) {
		return nil, &AmountOutOfRangeError{Amount: final, Min: s.amounts.Min, Max: s.amounts.Max}
	}

	o := &Order{
		UserID:         userID,
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		OfferCode:      req.OfferCode,
		TotalAmount:    subtotal,
		DiscountAmount: discount,
		FinalAmount:    final,
		CreatedAt:      now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Get returns the order if it belongs to the given user.
func (s *Service) Get(ctx context.Context, userID, orderID int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return o, nil
}

// Update changes the order's product and/or quantity, re-checking stock and
// recomputing the derived amounts from the current product price. The stored
// discount amount is carried over as-is and the final amount is re-checked
// against the allowed range.
func (s *Service) Update(ctx context.Context, userID, orderID int64, req UpdateOrderRequest) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotAuthorized
	}

	if req.ProductID != nil {
		o.ProductID = *req.ProductID
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		o.Quantity = *req.Quantity
	}

	p, err := s.products.GetByID(ctx, o.ProductID)
	if err != nil {
		return nil, err
	}
	if o.Quantity > p.Stock {
		return nil, ErrInsufficientStock
	}

	o.TotalAmount = p.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
	o.FinalAmount = o.TotalAmount.Sub(o.DiscountAmount)
	if !s.amounts.contains(o.FinalAmount) {
		return nil, &AmountOutOfRangeError{Amount: o.FinalAmount, Min: s.amounts.Min, Max: s.amounts.Max}
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// AddProduct appends qty units of a product to an existing order. The total
// grows by price*qty, the stored discount stays applied, and the new final
// amount must remain in range. Stock for the added units is decremented
// atomically with the order update.
func (s *Service) AddProduct(ctx context.Context, userID, orderID, productID int64, qty int) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotAuthorized
	}

	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > p.Stock {
		return nil, ErrInsufficientStock
	}

	o.Quantity += qty
	o.TotalAmount = o.TotalAmount.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	o.FinalAmount = o.TotalAmount.Sub(o.DiscountAmount)
	if !s.amounts.contains(o.FinalAmount) {
		return nil, &AmountOutOfRangeError{Amount: o.FinalAmount, Min: s.amounts.Min, Max: s.amounts.Max}
	}

	if err := s.orders.AppendStock(ctx, o, productID, qty); err != nil {
		return nil, errors.Wrap(err, "append product")
	}
	return o, nil
}

// Delete removes the order. Stock consumed by the order is not restored.
func (s *Service) Delete(ctx context.Context, userID, orderID int64) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrNotAuthorized
	}
	return s.orders.Delete(ctx, orderID)
}
