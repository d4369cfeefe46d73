package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Validator checks that an offer code may be redeemed by a given user and
// returns the offer on success. Product applicability is the caller's
// responsibility.
type Validator interface {
	Validate(ctx context.Context, code string, userID int64) (*Offer, error)
}

// UsageChecker reports whether a user has already placed an order with the
// given offer code. Implemented by the order store.
type UsageChecker interface {
	UserHasUsedCode(ctx context.Context, userID int64, code string) (bool, error)
}

// RepoValidator implements Validator against an offer Repository and the
// persisted order history.
type RepoValidator struct {
	offers Repository
	usage  UsageChecker
	now    func() time.Time
}

// ValidatorOption customizes a RepoValidator.
type ValidatorOption func(*RepoValidator)

// WithClock overrides the validator clock, used by tests.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *RepoValidator) { v.now = now }
}

// NewRepoValidator creates a RepoValidator. The clock defaults to time.Now.
func NewRepoValidator(offers Repository, usage UsageChecker, opts ...ValidatorOption) *RepoValidator {
	v := &RepoValidator{offers: offers, usage: usage, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate looks up the offer by code, checks expiry against the current UTC
// instant, and rejects codes the user has redeemed before.
func (v *RepoValidator) Validate(ctx context.Context, code string, userID int64) (*Offer, error) {
	o, err := v.offers.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup offer")
	}

	if o.ExpiresAt.Before(v.now().UTC()) {
		return nil, ErrExpired
	}

	used, err := v.usage.UserHasUsedCode(ctx, userID, code)
	if err != nil {
		return nil, errors.Wrap(err, "check offer usage")
	}
	if used {
		return nil, ErrAlreadyUsed
	}

	return o, nil
}
