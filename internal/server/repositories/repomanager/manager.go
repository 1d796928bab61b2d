package repomanager

import (
	"context"
	"database/sql"

	"github.com/sitestats/usersmanager/internal/dbx"
	"github.com/sitestats/usersmanager/internal/server/repositories/access"
	"github.com/sitestats/usersmanager/internal/server/repositories/preferences"
	"github.com/sitestats/usersmanager/internal/server/repositories/tokens"
	"github.com/sitestats/usersmanager/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Access(db dbx.DBTX) access.Repository
	Preferences(db dbx.DBTX) preferences.Repository
}
