package store

import (
	"context"
	"errors"

	"github.com/gamevault/gamevault-server/internal/domain"
)

const userPrefix = "user:"

var (
	// ErrUserNotFound is returned when a user cannot be found by ID, email, or username.
	ErrUserNotFound = ErrNotFound.WithMessage("user not found")
	// ErrUserExists is returned when the email or username is already taken.
	ErrUserExists = ErrAlreadyExists.WithMessage("user already exists")
)

func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, userPrefix).
		WithIndexTransform("email", func(u *domain.User) []string {
			return []string{domain.NormalizeEmail(u.Email)}
		}, domain.NormalizeEmail).
		WithIndexTransform("username", func(u *domain.User) []string {
			return []string{domain.NormalizeUsername(u.Username)}
		}, domain.NormalizeUsername)
}

// CreateUser stores a new account. Email and username are unique, case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Create(ctx, user.ID, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return userResult(s.Users.Get(ctx, id))
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return userResult(s.Users.GetByIndex(ctx, "email", email))
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return userResult(s.Users.GetByIndex(ctx, "username", username))
}

// UpdateUser replaces a stored user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	err := s.Users.Update(ctx, user.ID, user)
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, ErrAlreadyExists):
		return ErrUserExists
	}
	return err
}

func userResult(u *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}
