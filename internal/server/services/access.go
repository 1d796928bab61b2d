package services

import (
	"context"
	"database/sql"
	"sort"

	"github.com/sitestats/usersmanager/internal/logging"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
)

// AccessService resolves per-site permission levels and answers the
// site/access queries. Every query re-evaluates the caller's own access
// from current store state; results are never cached across calls.
//
// Queries the caller lacks admin-or-above visibility for return empty
// results rather than errors, so responses do not leak which sites or
// users exist.
type AccessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAccessService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *AccessService {
	return &AccessService{db: db, repomanager: m, logger: l.With("component", "access")}
}

// SetUserAccess grants level on idSite to login. AccessNoAccess removes the
// grant; AccessSuperuser is not a per-site grant and is rejected upstream
// by models.ParseAccess callers that pass user input here.
func (s *AccessService) SetUserAccess(ctx context.Context, login string, idSite int64, level models.Access) error {
	return s.repomanager.Access(s.db).Set(ctx, login, idSite, level)
}

// SiteAccess returns the effective level a login holds on a site:
// superusers get AccessSuperuser, otherwise the explicit grant, otherwise
// AccessNoAccess.
func (s *AccessService) SiteAccess(ctx context.Context, login string, idSite int64) (models.Access, error) {
	user, err := s.repomanager.Users(s.db).GetByLogin(ctx, login)
	if err == nil && user.Superuser {
		return models.AccessSuperuser, nil
	}

	grants, err := s.repomanager.Access(s.db).GetForLogin(ctx, login)
	if err != nil {
		return models.AccessNoAccess, err
	}
	for _, g := range grants {
		if g.IDSite == idSite {
			return g.Access, nil
		}
	}
	return models.AccessNoAccess, nil
}

// callerCanViewSiteUsers reports whether the caller may see the user list
// of a site: admin-or-above on that site, or superuser.
func (s *AccessService) callerCanViewSiteUsers(ctx context.Context, caller Caller, idSite int64) (bool, error) {
	if caller.Superuser {
		return true, nil
	}
	level, err := s.SiteAccess(ctx, caller.Login, idSite)
	if err != nil {
		return false, err
	}
	return level.AtLeast(models.AccessAdmin), nil
}

// GetUsersAccessFromSite returns login → access level for every user with
// a grant on the site, superusers included with AccessSuperuser. Callers
// without admin-or-above on the site get an empty mapping.
func (s *AccessService) GetUsersAccessFromSite(ctx context.Context, caller Caller, idSite int64) (map[string]models.Access, error) {
	ok, err := s.callerCanViewSiteUsers(ctx, caller, idSite)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]models.Access{}, nil
	}

	result, err := s.repomanager.Access(s.db).GetSite(ctx, idSite)
	if err != nil {
		return nil, err
	}

	superusers, err := s.repomanager.Users(s.db).ListSuperusers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range superusers {
		result[u.Login] = models.AccessSuperuser
	}
	return result, nil
}

// GetUsersSitesFromAccess returns login → site ids where the login holds
// at least the requested level. The filter is inclusive: asking for admin
// also matches superusers, who are reported on every site known to the
// grant table. Sites the caller cannot administer are omitted.
func (s *AccessService) GetUsersSitesFromAccess(ctx context.Context, caller Caller, level models.Access) (map[string][]int64, error) {
	grants, err := s.repomanager.Access(s.db).GetSitesWithAtLeast(ctx, level)
	if err != nil {
		return nil, err
	}

	allSites := map[int64]struct{}{}
	for _, sites := range grants {
		for _, id := range sites {
			allSites[id] = struct{}{}
		}
	}

	superusers, err := s.repomanager.Users(s.db).ListSuperusers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range superusers {
		sites := make([]int64, 0, len(allSites))
		for id := range allSites {
			sites = append(sites, id)
		}
		sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })
		grants[u.Login] = sites
	}

	if caller.Superuser {
		return grants, nil
	}

	// Trim to sites the caller administers; a view-only caller ends up
	// with nothing.
	result := make(map[string][]int64)
	for login, sites := range grants {
		var visible []int64
		for _, id := range sites {
			ok, err := s.callerCanViewSiteUsers(ctx, caller, id)
			if err != nil {
				return nil, err
			}
			if ok {
				visible = append(visible, id)
			}
		}
		if len(visible) > 0 {
			result[login] = visible
		}
	}
	return result, nil
}

// GetUsersWithSiteAccess returns the logins holding at least the requested
// level on the site, superusers included. Callers without admin-or-above
// on the site get an empty sequence, not an error.
func (s *AccessService) GetUsersWithSiteAccess(ctx context.Context, caller Caller, idSite int64, level models.Access) ([]string, error) {
	ok, err := s.callerCanViewSiteUsers(ctx, caller, idSite)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}

	siteAccess, err := s.repomanager.Access(s.db).GetSite(ctx, idSite)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	for login, granted := range siteAccess {
		if granted.AtLeast(level) {
			seen[login] = struct{}{}
		}
	}

	superusers, err := s.repomanager.Users(s.db).ListSuperusers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range superusers {
		seen[u.Login] = struct{}{}
	}

	logins := make([]string, 0, len(seen))
	for login := range seen {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins, nil
}
