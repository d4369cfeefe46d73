// Package product defines catalog items and their persistence contract.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrNameTaken is returned when a product with the same name exists.
	ErrNameTaken = errors.New("product name already taken")
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID      int64
	Name    string
	Price   decimal.Decimal
	Stock   int
	OwnerID int64
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Delete(ctx context.Context, id int64) error
}
