package auth

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/owner"
	"github.com/xenking/storefront/internal/domain/user"
)

// ErrInvalidCredentials is returned when the name or password is wrong.
// Lookup misses and password mismatches are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service implements registration and login for users and owners.
type Service struct {
	users  user.Repository
	owners owner.Repository
	tokens *TokenIssuer
}

// NewService creates an auth Service.
func NewService(users user.Repository, owners owner.Repository, tokens *TokenIssuer) *Service {
	return &Service{users: users, owners: owners, tokens: tokens}
}

// RegisterUser creates a user account with a hashed password.
func (s *Service) RegisterUser(ctx context.Context, username, password string) (*user.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &user.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginUser verifies user credentials and returns a signed token.
func (s *Service) LoginUser(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByName(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "lookup user")
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID, RoleUser)
}

// RegisterOwner creates an owner account with a hashed password.
func (s *Service) RegisterOwner(ctx context.Context, name, password string) (*owner.Owner, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	o := &owner.Owner{Name: name, PasswordHash: hash}
	if err := s.owners.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// LoginOwner verifies owner credentials and returns a signed token.
func (s *Service) LoginOwner(ctx context.Context, name, password string) (string, error) {
	o, err := s.owners.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, owner.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "lookup owner")
	}
	if !CheckPassword(o.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(o.ID, RoleOwner)
}
