package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/owner"
)

const (
	createOwnerSQL = `INSERT INTO owners (name, password_hash)
		VALUES ($1, $2) RETURNING id, created_at`

	getOwnerByNameSQL = `SELECT id, name, password_hash, created_at
		FROM owners WHERE name = $1`

	getOwnerByIDSQL = `SELECT id, name, password_hash, created_at
		FROM owners WHERE id = $1`
)

var _ owner.Repository = (*OwnerRepository)(nil)

// OwnerRepository implements owner.Repository backed by PostgreSQL.
type OwnerRepository struct {
	pool *pgxpool.Pool
}

// NewOwnerRepository returns an OwnerRepository that uses the given pool.
func NewOwnerRepository(pool *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{pool: pool}
}

// Create inserts a new owner and fills in the generated ID.
// Returns owner.ErrNameTaken on a duplicate name.
func (r *OwnerRepository) Create(ctx context.Context, o *owner.Owner) error {
	err := r.pool.QueryRow(ctx, createOwnerSQL, o.Name, o.PasswordHash).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "") {
			return owner.ErrNameTaken
		}
		return fmt.Errorf("creating owner %q: %w", o.Name, err)
	}
	return nil
}

// GetByName returns the owner with the given name.
func (r *OwnerRepository) GetByName(ctx context.Context, name string) (*owner.Owner, error) {
	rows, err := r.pool.Query(ctx, getOwnerByNameSQL, name)
	if err != nil {
		return nil, fmt.Errorf("getting owner %q: %w", name, err)
	}
	return collectOwner(rows, name)
}

// GetByID returns the owner with the given ID.
func (r *OwnerRepository) GetByID(ctx context.Context, id int64) (*owner.Owner, error) {
	rows, err := r.pool.Query(ctx, getOwnerByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting owner %d: %w", id, err)
	}
	return collectOwner(rows, fmt.Sprint(id))
}

func collectOwner(rows pgx.Rows, key string) (*owner.Owner, error) {
	o, err := pgx.CollectExactlyOneRow(rows, scanOwner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, owner.ErrNotFound
		}
		return nil, fmt.Errorf("getting owner %s: %w", key, err)
	}
	return &o, nil
}

func scanOwner(row pgx.CollectableRow) (owner.Owner, error) {
	var o owner.Owner
	err := row.Scan(&o.ID, &o.Name, &o.PasswordHash, &o.CreatedAt)
	return o, err
}
