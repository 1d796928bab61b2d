package services

import (
	"context"
	"database/sql"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
)

// DirectoryService is the read-oriented query surface over the credential
// store, filtered by the access model's visibility rule: superusers see
// everyone, site admins see users sharing their administered sites plus
// themselves, view-only callers see only themselves.
type DirectoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      *AccessService
}

func NewDirectoryService(db *sql.DB, m repomanager.RepositoryManager, access *AccessService) *DirectoryService {
	return &DirectoryService{db: db, repomanager: m, access: access}
}

// visibleLogins computes the set of logins the caller may see. Re-evaluated
// on every call from current store state.
func (s *DirectoryService) visibleLogins(ctx context.Context, caller Caller) (map[string]struct{}, error) {
	visible := map[string]struct{}{caller.Login: {}}

	grants, err := s.repomanager.Access(s.db).GetForLogin(ctx, caller.Login)
	if err != nil {
		return nil, err
	}

	for _, g := range grants {
		if !g.Access.AtLeast(models.AccessAdmin) {
			continue
		}
		siteUsers, err := s.repomanager.Access(s.db).GetSite(ctx, g.IDSite)
		if err != nil {
			return nil, err
		}
		for login := range siteUsers {
			visible[login] = struct{}{}
		}
	}
	return visible, nil
}

// GetUser returns the user record for login. Nonexistent logins and logins
// outside the caller's visibility both yield common.ErrorNotFound, so the
// response does not reveal whether the account exists.
func (s *DirectoryService) GetUser(ctx context.Context, caller Caller, login string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if caller.Superuser {
		return user, nil
	}
	visible, err := s.visibleLogins(ctx, caller)
	if err != nil {
		return nil, err
	}
	if _, ok := visible[login]; !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

// GetUsers returns all user records the caller may see, ordered by login.
func (s *DirectoryService) GetUsers(ctx context.Context, caller Caller) ([]*models.User, error) {
	all, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	if caller.Superuser {
		return all, nil
	}

	visible, err := s.visibleLogins(ctx, caller)
	if err != nil {
		return nil, err
	}
	result := make([]*models.User, 0, len(visible))
	for _, u := range all {
		if _, ok := visible[u.Login]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

// GetUsersLogin returns the logins the caller may see, ordered
// alphabetically.
func (s *DirectoryService) GetUsersLogin(ctx context.Context, caller Caller) ([]string, error) {
	if caller.Superuser {
		return s.repomanager.Users(s.db).ListLogins(ctx)
	}

	users, err := s.GetUsers(ctx, caller)
	if err != nil {
		return nil, err
	}
	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.Login)
	}
	return logins, nil
}
