// Package owner defines merchant accounts that manage products and offers.
package owner

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested owner does not exist.
	ErrNotFound = errors.New("owner not found")
	// ErrNameTaken is returned when the owner name is already registered.
	ErrNameTaken = errors.New("owner name already taken")
)

// Owner is a merchant account. Owners create products and offers; they do
// not place orders.
type Owner struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository defines persistence operations for owners.
type Repository interface {
	Create(ctx context.Context, o *Owner) error
	GetByName(ctx context.Context, name string) (*Owner, error)
	GetByID(ctx context.Context, id int64) (*Owner, error)
}
