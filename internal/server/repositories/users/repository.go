// Package users provides persistence for platform accounts.
package users

import (
	"context"

	"github.com/sitestats/usersmanager/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. Returns common.ErrorDuplicateIdentity when
	// the login or email is already taken.
	Create(ctx context.Context, user *models.User) error

	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByPasswordHash is the legacy half of token-auth resolution: some
	// callers still present the stored password hash as a bearer credential.
	GetByPasswordHash(ctx context.Context, hash string) (*models.User, error)

	// List returns all users ordered by login.
	List(ctx context.Context) ([]*models.User, error)

	// ListLogins returns all logins ordered alphabetically.
	ListLogins(ctx context.Context) ([]string, error)

	// ListSuperusers returns users with the global superuser flag set.
	ListSuperusers(ctx context.Context) ([]*models.User, error)

	// UpdatePassword replaces the stored hash and bumps ts_password_modified.
	UpdatePassword(ctx context.Context, login string, passwordHash string) error

	SetSuperuser(ctx context.Context, login string, superuser bool) error

	// Delete removes the user; tokens, grants and preferences go with it
	// via ON DELETE CASCADE.
	Delete(ctx context.Context, login string) error
}
