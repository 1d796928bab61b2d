// Package preferences provides persistence for per-login named settings.
package preferences

import "context"

type Repository interface {
	// Get returns the stored value for (login, name), or
	// common.ErrorNotFound when no explicit value exists.
	Get(ctx context.Context, login string, name string) (string, error)

	// Set upserts the value for (login, name).
	Set(ctx context.Context, login string, name string, value string) error

	// DeleteAllForLogin removes every stored preference of the login.
	DeleteAllForLogin(ctx context.Context, login string) error
}
