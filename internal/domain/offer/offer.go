// Package offer defines promotional offer codes, their validation rules,
// and discount calculation.
package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no offer matches the given code or ID.
	ErrNotFound = errors.New("offer not found")
	// ErrExpired is returned when an offer is past its expiry instant.
	ErrExpired = errors.New("offer expired")
	// ErrAlreadyUsed is returned when the requesting user has already placed
	// an order with this offer code.
	ErrAlreadyUsed = errors.New("offer already used")
	// ErrNotApplicable is returned when a product-restricted offer is used
	// against a different product.
	ErrNotApplicable = errors.New("offer not applicable to this product")
	// ErrCodeTaken is returned when an offer with the same code exists.
	ErrCodeTaken = errors.New("offer code already taken")
	// ErrExpiryInPast rejects creating or updating an offer whose expiry
	// already passed.
	ErrExpiryInPast = errors.New("offer expiry is in the past")
)

// Offer is a discount entitlement identified by a unique code.
// A nil ProductID means the offer applies store-wide.
type Offer struct {
	ID            int64
	Code          string
	DiscountValue decimal.Decimal
	IsPercentage  bool
	ExpiresAt     time.Time
	ProductID     *int64
	OwnerID       int64
}

// AppliesTo reports whether the offer may be used for the given product.
func (o *Offer) AppliesTo(productID int64) bool {
	return o.ProductID == nil || *o.ProductID == productID
}

// Update enumerates the mutable offer fields. Nil fields are left unchanged.
type Update struct {
	Code          *string
	DiscountValue *decimal.Decimal
	IsPercentage  *bool
	ExpiresAt     *time.Time
	ProductID     *int64
}

// Merge applies the non-nil fields of upd onto the offer.
func (o *Offer) Merge(upd Update) {
	if upd.Code != nil {
		o.Code = *upd.Code
	}
	if upd.DiscountValue != nil {
		o.DiscountValue = *upd.DiscountValue
	}
	if upd.IsPercentage != nil {
		o.IsPercentage = *upd.IsPercentage
	}
	if upd.ExpiresAt != nil {
		o.ExpiresAt = *upd.ExpiresAt
	}
	if upd.ProductID != nil {
		o.ProductID = upd.ProductID
	}
}

// Repository defines persistence operations for offers. Implementations must
// return ExpiresAt normalized to UTC so expiry comparisons are unambiguous.
type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id int64) (*Offer, error)
	FindByCode(ctx context.Context, code string) (*Offer, error)
	Update(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, id int64) error
}
