package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/dbx"
	"github.com/sitestats/usersmanager/internal/server/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tokenColumns = `id, login, description, hash, system, date_created, date_expired, last_used`

func scanToken(row interface{ Scan(...any) error }) (*models.AuthToken, error) {
	token := &models.AuthToken{}
	err := row.Scan(&token.ID, &token.Login, &token.Description, &token.Hash,
		&token.System, &token.DateCreated, &token.DateExpired, &token.LastUsed)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, login, description, hash, system, date_expired)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING date_created
	`
	err := r.db.QueryRowContext(ctx, query,
		token.ID, token.Login, token.Description, token.Hash, token.System, token.DateExpired).
		Scan(&token.DateCreated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorDuplicateIdentity
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByHash(ctx context.Context, hash string, now time.Time) (*models.AuthToken, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM auth_tokens
		WHERE hash = $1 AND (date_expired IS NULL OR date_expired > $2)
	`, tokenColumns)

	token, err := scanToken(r.db.QueryRowContext(ctx, query, hash, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

func (r *PostgresRepository) GetAllNonSystemForLogin(ctx context.Context, login string) ([]*models.AuthToken, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM auth_tokens
		WHERE login = $1 AND NOT system
		ORDER BY date_created DESC
	`, tokenColumns)

	rows, err := r.db.QueryContext(ctx, query, login)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuthToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteAllNonSystemForLogin(ctx context.Context, login string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE login = $1 AND NOT system`, login)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllForLogin(ctx context.Context, login string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE login = $1`, login)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE date_expired IS NOT NULL AND date_expired < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) TouchLastUsed(ctx context.Context, id string, when time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE auth_tokens SET last_used = $2 WHERE id = $1`, id, when)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
