package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/dbx"
	"github.com/sitestats/usersmanager/internal/server/models"
)

// uniqueViolation is the PostgreSQL error code raised when an insert hits a
// unique constraint (login, email).
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `login, email, password_hash, superuser, date_registered, ts_password_modified, ts_changes_viewed`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.Login, &user.Email, &user.PasswordHash, &user.Superuser,
		&user.DateRegistered, &user.TsPasswordModified, &user.TsChangesViewed)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (login, email, password_hash, superuser)
		VALUES ($1, $2, $3, $4)
		RETURNING date_registered, ts_password_modified, ts_changes_viewed
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Login, user.Email, user.PasswordHash, user.Superuser).
		Scan(&user.DateRegistered, &user.TsPasswordModified, &user.TsChangesViewed)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorDuplicateIdentity
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getBy(ctx context.Context, column string, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getBy(ctx, "login", login)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) GetByPasswordHash(ctx context.Context, hash string) (*models.User, error) {
	return r.getBy(ctx, "password_hash", hash)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT %s FROM users ORDER BY login`, userColumns))
}

func (r *PostgresRepository) ListSuperusers(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE superuser ORDER BY login`, userColumns))
}

func (r *PostgresRepository) ListLogins(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT login FROM users ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var logins []string
	for rows.Next() {
		var login string
		if err := rows.Scan(&login); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		logins = append(logins, login)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return logins, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, login string, passwordHash string) error {
	query := `
		UPDATE users SET password_hash = $2, ts_password_modified = now()
		WHERE login = $1
	`
	res, err := r.db.ExecContext(ctx, query, login, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) SetSuperuser(ctx context.Context, login string, superuser bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET superuser = $2 WHERE login = $1`, login, superuser)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, login string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE login = $1`, login)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
