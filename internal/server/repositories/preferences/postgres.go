package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, login string, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM user_preferences WHERE login = $1 AND name = $2`, login, name).
		Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return value, nil
}

func (r *PostgresRepository) Set(ctx context.Context, login string, name string, value string) error {
	query := `
		INSERT INTO user_preferences (login, name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (login, name) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, login, name, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllForLogin(ctx context.Context, login string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM user_preferences WHERE login = $1`, login); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
