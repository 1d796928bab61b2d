// Package access provides persistence for per-site permission grants.
// Only explicit view/admin rows live here: noaccess is the absence of a row
// and superuser is a flag on the user record.
package access

import (
	"context"

	"github.com/sitestats/usersmanager/internal/server/models"
)

type Repository interface {
	// Set upserts the grant for (login, idSite). Setting AccessNoAccess
	// removes the row instead.
	Set(ctx context.Context, login string, idSite int64, level models.Access) error

	// GetSite returns login → level for every user with an explicit grant
	// on the site.
	GetSite(ctx context.Context, idSite int64) (map[string]models.Access, error)

	// GetSitesWithAtLeast returns login → site ids where the login holds a
	// grant at or above the given level. Superusers are not represented
	// here; the service layer adds them.
	GetSitesWithAtLeast(ctx context.Context, level models.Access) (map[string][]int64, error)

	// GetForLogin returns the login's explicit grants ordered by site id.
	GetForLogin(ctx context.Context, login string) ([]models.AccessGrant, error)

	// DeleteAllForLogin removes every grant of the login. Idempotent.
	DeleteAllForLogin(ctx context.Context, login string) error
}
