package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/offer"
)

const (
	createOfferSQL = `INSERT INTO offers (code, discount_value, is_percentage, expires_at, product_id, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	getOfferByIDSQL = `SELECT id, code, discount_value, is_percentage, expires_at, product_id, owner_id
		FROM offers WHERE id = $1`

	findOfferByCodeSQL = `SELECT id, code, discount_value, is_percentage, expires_at, product_id, owner_id
		FROM offers WHERE code = $1`

	updateOfferSQL = `UPDATE offers
		SET code = $2, discount_value = $3, is_percentage = $4, expires_at = $5, product_id = $6
		WHERE id = $1`

	deleteOfferSQL = `DELETE FROM offers WHERE id = $1`
)

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// Create inserts a new offer and fills in the generated ID.
// Returns offer.ErrCodeTaken on a duplicate code.
func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	err := r.pool.QueryRow(ctx, createOfferSQL,
		o.Code, o.DiscountValue, o.IsPercentage, o.ExpiresAt, o.ProductID, o.OwnerID,
	).Scan(&o.ID)
	if err != nil {
		if uniqueViolation(err, "") {
			return offer.ErrCodeTaken
		}
		return fmt.Errorf("creating offer %q: %w", o.Code, err)
	}
	return nil
}

// GetByID returns a single offer by its identifier.
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, getOfferByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting offer %d: %w", id, err)
	}
	return collectOffer(rows, fmt.Sprint(id))
}

// FindByCode returns the offer with the given code.
func (r *OfferRepository) FindByCode(ctx context.Context, code string) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, findOfferByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding offer by code %q: %w", code, err)
	}
	return collectOffer(rows, code)
}

// Update persists the mutable offer fields.
func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	tag, err := r.pool.Exec(ctx, updateOfferSQL,
		o.ID, o.Code, o.DiscountValue, o.IsPercentage, o.ExpiresAt, o.ProductID,
	)
	if err != nil {
		if uniqueViolation(err, "") {
			return offer.ErrCodeTaken
		}
		return fmt.Errorf("updating offer %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

// Delete removes the offer row.
func (r *OfferRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOfferSQL, id)
	if err != nil {
		return fmt.Errorf("deleting offer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

func collectOffer(rows pgx.Rows, key string) (*offer.Offer, error) {
	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, offer.ErrNotFound
		}
		return nil, fmt.Errorf("getting offer %s: %w", key, err)
	}
	return &o, nil
}

func scanOffer(row pgx.CollectableRow) (offer.Offer, error) {
	var (
		o     offer.Offer
		value decimal.Decimal
	)
	err := row.Scan(&o.ID, &o.Code, &value, &o.IsPercentage, &o.ExpiresAt, &o.ProductID, &o.OwnerID)
	o.DiscountValue = value
	// Expiry is stored as timestamptz; normalize to UTC once at the read
	// boundary so every comparison downstream is unambiguous.
	o.ExpiresAt = o.ExpiresAt.UTC()
	return o, err
}
