package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
)

// PreferenceService reads and writes per-login named settings with
// system-defined defaults.
type PreferenceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPreferenceService(db *sql.DB, m repomanager.RepositoryManager) *PreferenceService {
	return &PreferenceService{db: db, repomanager: m}
}

// GetUserPreference returns the stored value for (userLogin, name), or the
// system default when nothing is stored. An empty userLogin means the
// caller's own login.
//
// A nonexistent userLogin still yields the system default instead of an
// error; lookups never reveal whether the account exists.
func (s *PreferenceService) GetUserPreference(ctx context.Context, caller Caller, userLogin string, name string) (string, error) {
	login := userLogin
	if login == "" {
		login = caller.Login
	}

	value, err := s.repomanager.Preferences(s.db).Get(ctx, login, name)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	if def, ok := models.DefaultPreferences[name]; ok {
		return def, nil
	}
	return "", common.ErrorNotFound
}

// SetUserPreference stores a value for (userLogin, name). Only the user
// themselves or a superuser may write; an empty userLogin means the
// caller's own login.
func (s *PreferenceService) SetUserPreference(ctx context.Context, caller Caller, userLogin string, name string, value string) error {
	login := userLogin
	if login == "" {
		login = caller.Login
	}
	if login != caller.Login && !caller.Superuser {
		return common.ErrorUnauthenticated
	}
	return s.repomanager.Preferences(s.db).Set(ctx, login, name, value)
}
