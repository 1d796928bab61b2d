// Package tokens provides persistence for auth tokens. Only token hashes
// are stored; raw values never reach this layer.
package tokens

import (
	"context"
	"time"

	"github.com/sitestats/usersmanager/internal/server/models"
)

type Repository interface {
	// Create inserts a token row. Returns common.ErrorDuplicateIdentity when
	// the hash collides with any existing row, expired or not.
	Create(ctx context.Context, token *models.AuthToken) error

	// GetByHash returns the token with the given hash if it has not expired
	// at instant now. Expired rows are treated as absent but not deleted.
	GetByHash(ctx context.Context, hash string, now time.Time) (*models.AuthToken, error)

	// GetAllNonSystemForLogin returns the login's user-created tokens ordered
	// by creation date descending, most recent first.
	GetAllNonSystemForLogin(ctx context.Context, login string) ([]*models.AuthToken, error)

	// DeleteAllNonSystemForLogin revokes every user-created token for the
	// login. Idempotent: deleting zero rows is not an error.
	DeleteAllNonSystemForLogin(ctx context.Context, login string) error

	// DeleteAllForLogin removes every token of the login, system sessions
	// included. Used when the owning user is deleted; tokens never outlive
	// their user.
	DeleteAllForLogin(ctx context.Context, login string) error

	// DeleteExpired removes rows whose expiry passed before the given
	// instant and returns the number removed. Housekeeping only; expiry is
	// already enforced on lookup.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// TouchLastUsed records that the token was presented as a credential.
	TouchLastUsed(ctx context.Context, id string, when time.Time) error
}
