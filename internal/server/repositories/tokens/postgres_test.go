package tokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT\s+INTO\s+auth_tokens`).
		WithArgs("id-1", "login1", "test", "deadbeef", false, nil).
		WillReturnRows(sqlmock.NewRows([]string{"date_created"}).AddRow(now))

	token := &models.AuthToken{ID: "id-1", Login: "login1", Description: "test", Hash: "deadbeef"}
	if err := repo.Create(context.Background(), token); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !token.DateCreated.Equal(now) {
		t.Fatalf("expected date_created backfilled, got %v", token.DateCreated)
	}
}

func TestCreate_HashCollision(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+auth_tokens`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "auth_tokens_hash_key"})

	err := repo.Create(context.Background(), &models.AuthToken{ID: "id-1", Login: "login1", Hash: "deadbeef"})
	if !errors.Is(err, common.ErrorDuplicateIdentity) {
		t.Fatalf("expected ErrorDuplicateIdentity, got %v", err)
	}
}

func TestGetByHash_ExcludesExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM auth_tokens\s+WHERE hash = \$1 AND \(date_expired IS NULL OR date_expired > \$2\)`).
		WithArgs("deadbeef", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByHash(context.Background(), "deadbeef", now)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetAllNonSystemForLogin_OrderedDescending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "login", "description", "hash", "system",
		"date_created", "date_expired", "last_used"}).
		AddRow("id-2", "login1", "newer", "hash2", false, now, nil, nil).
		AddRow("id-1", "login1", "older", "hash1", false, now.Add(-time.Hour), nil, nil)

	mock.ExpectQuery(`SELECT .* FROM auth_tokens\s+WHERE login = \$1 AND NOT system\s+ORDER BY date_created DESC`).
		WithArgs("login1").
		WillReturnRows(rows)

	tokens, err := repo.GetAllNonSystemForLogin(context.Background(), "login1")
	if err != nil {
		t.Fatalf("GetAllNonSystemForLogin error: %v", err)
	}
	if len(tokens) != 2 || tokens[0].Description != "newer" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
}

func TestDeleteAllNonSystemForLogin_IdempotentOnZeroRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM auth_tokens WHERE login = \$1 AND NOT system`).
		WithArgs("login1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteAllNonSystemForLogin(context.Background(), "login1"); err != nil {
		t.Fatalf("expected no error on zero rows, got %v", err)
	}
}

func TestDeleteAllForLogin_IncludesSystemRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM auth_tokens WHERE login = \$1$`).
		WithArgs("login1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.DeleteAllForLogin(context.Background(), "login1"); err != nil {
		t.Fatalf("DeleteAllForLogin error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	before := time.Now()
	mock.ExpectExec(`DELETE FROM auth_tokens WHERE date_expired IS NOT NULL AND date_expired < \$1`).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), before)
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}
}
