package access

import (
	"context"
	"fmt"

	"github.com/sitestats/usersmanager/internal/dbx"
	"github.com/sitestats/usersmanager/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Set(ctx context.Context, login string, idSite int64, level models.Access) error {
	if level == models.AccessNoAccess {
		_, err := r.db.ExecContext(ctx,
			`DELETE FROM access WHERE login = $1 AND idsite = $2`, login, idSite)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO access (login, idsite, access)
		VALUES ($1, $2, $3)
		ON CONFLICT (login, idsite) DO UPDATE SET access = EXCLUDED.access
	`
	if _, err := r.db.ExecContext(ctx, query, login, idSite, string(level)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSite(ctx context.Context, idSite int64) (map[string]models.Access, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT login, access FROM access WHERE idsite = $1 ORDER BY login`, idSite)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.Access)
	for rows.Next() {
		var login, level string
		if err := rows.Scan(&login, &level); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[login] = models.Access(level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// levelsAtOrAbove renders the explicit grant values at or above level as a
// SQL IN list. Values come from the fixed Access constants, never from the
// caller, so string interpolation is safe here.
func levelsAtOrAbove(level models.Access) string {
	if level.AtLeast(models.AccessAdmin) {
		return `('admin')`
	}
	return `('view', 'admin')`
}

func (r *PostgresRepository) GetSitesWithAtLeast(ctx context.Context, level models.Access) (map[string][]int64, error) {
	query := fmt.Sprintf(
		`SELECT login, idsite FROM access WHERE access IN %s ORDER BY login, idsite`,
		levelsAtOrAbove(level))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]int64)
	for rows.Next() {
		var login string
		var idSite int64
		if err := rows.Scan(&login, &idSite); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[login] = append(result[login], idSite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetForLogin(ctx context.Context, login string) ([]models.AccessGrant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT login, idsite, access FROM access WHERE login = $1 ORDER BY idsite`, login)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.AccessGrant
	for rows.Next() {
		var grant models.AccessGrant
		var level string
		if err := rows.Scan(&grant.Login, &grant.IDSite, &level); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		grant.Access = models.Access(level)
		result = append(result, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteAllForLogin(ctx context.Context, login string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM access WHERE login = $1`, login); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
