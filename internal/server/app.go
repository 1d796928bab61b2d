// Package server wires the users-manager application together: database
// connection, schema migrations, services and the API dispatch surface.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/sitestats/usersmanager/internal/logging"
	"github.com/sitestats/usersmanager/internal/server/api"
	"github.com/sitestats/usersmanager/internal/server/config"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
	"github.com/sitestats/usersmanager/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	Users       *services.UserService
	Tokens      *services.TokenService
	Access      *services.AccessService
	Directory   *services.DirectoryService
	Preferences *services.PreferenceService
	API         *api.API
}

// NewApp opens the database, runs migrations and builds the service graph.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	users := services.NewUserService(db, rm, cfg, logger)
	tokens := services.NewTokenService(db, rm, users, cfg, logger)
	access := services.NewAccessService(db, rm, logger)
	directory := services.NewDirectoryService(db, rm, access)
	preferences := services.NewPreferenceService(db, rm)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		Users:       users,
		Tokens:      tokens,
		Access:      access,
		Directory:   directory,
		Preferences: preferences,
		API:         api.New(users, tokens, access, directory, preferences, logger),
	}, nil
}

// Close releases the database connection.
func (app *App) Close() error {
	return app.db.Close()
}
