package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (username, password_hash)
		VALUES ($1, $2) RETURNING id, created_at`

	getUserByNameSQL = `SELECT id, username, password_hash, created_at
		FROM users WHERE username = $1`

	getUserByIDSQL = `SELECT id, username, password_hash, created_at
		FROM users WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user and fills in the generated ID.
// Returns user.ErrNameTaken on a duplicate username.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, createUserSQL, u.Username, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "") {
			return user.ErrNameTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

// GetByName returns the user with the given username.
func (r *UserRepository) GetByName(ctx context.Context, username string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByNameSQL, username)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return collectUser(rows, username)
}

// GetByID returns the user with the given ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return collectUser(rows, fmt.Sprint(id))
}

func collectUser(rows pgx.Rows, key string) (*user.User, error) {
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", key, err)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
