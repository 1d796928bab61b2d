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

// InMemoryRepositoryManager vends shared in-memory repositories. The db
// handle is ignored; all state lives in the manager. Intended for tests.
type InMemoryRepositoryManager struct {
	users       *users.InMemoryRepository
	tokens      *tokens.InMemoryRepository
	access      *access.InMemoryRepository
	preferences *preferences.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:       users.NewInMemoryRepository(),
		tokens:      tokens.NewInMemoryRepository(),
		access:      access.NewInMemoryRepository(),
		preferences: preferences.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	return m.tokens
}

func (m *InMemoryRepositoryManager) Access(db dbx.DBTX) access.Repository {
	return m.access
}

func (m *InMemoryRepositoryManager) Preferences(db dbx.DBTX) preferences.Repository {
	return m.preferences
}
