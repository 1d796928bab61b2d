package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/logging"
	"github.com/sitestats/usersmanager/internal/server/config"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
)

// maxTokenAttempts bounds the generate-insert retry loop on hash
// collisions. With 128 bits of entropy a single retry is already
// astronomically unlikely.
const maxTokenAttempts = 10

// TokenService issues, hashes and revokes app-specific auth tokens.
type TokenService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	users         *UserService
	logger        logging.Logger
	tokenAuthSalt string
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, users *UserService, cfg *config.Config, l logging.Logger) *TokenService {
	return &TokenService{
		db:            db,
		repomanager:   m,
		users:         users,
		logger:        l.With("component", "tokens"),
		tokenAuthSalt: cfg.TokenAuthSalt,
	}
}

// HashTokenAuth exposes the at-rest hash for callers that need to compare
// raw values against stored rows.
func (s *TokenService) HashTokenAuth(tokenAuth string) string {
	return HashTokenAuth(tokenAuth, s.tokenAuthSalt)
}

// CreateAppSpecificTokenAuth verifies the identity's password and issues a
// fresh app-specific token. The identity is resolved by exact login match
// first, then by email. Expiry precedence: an explicit expireDate wins,
// else expireHours from now, else the token never expires.
//
// The returned raw value (32 lowercase hex characters) is handed to the
// caller exactly once; only its salted hash is stored. Existing tokens for
// the login stay valid.
func (s *TokenService) CreateAppSpecificTokenAuth(ctx context.Context, loginOrEmail, password, description string, expireDate *time.Time, expireHours int) (string, error) {
	user, err := s.users.ResolveLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Same error as a wrong password: do not reveal which part failed.
			return "", common.ErrorInvalidCredentials
		}
		return "", err
	}
	if err := s.users.CheckPassword(ctx, user, password); err != nil {
		return "", err
	}

	var dateExpired *time.Time
	switch {
	case expireDate != nil:
		dateExpired = expireDate
	case expireHours > 0:
		t := time.Now().Add(time.Duration(expireHours) * time.Hour)
		dateExpired = &t
	}

	repo := s.repomanager.Tokens(s.db)
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		raw, err := common.MakeRandHexString(common.TokenAuthLength / 2)
		if err != nil {
			return "", fmt.Errorf("error generating token: %w", err)
		}

		token := &models.AuthToken{
			ID:          uuid.NewString(),
			Login:       user.Login,
			Description: description,
			Hash:        s.HashTokenAuth(raw),
			System:      false,
			DateExpired: dateExpired,
		}
		err = repo.Create(ctx, token)
		if errors.Is(err, common.ErrorDuplicateIdentity) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("error storing token: %w", err)
		}

		s.logger.Info(ctx, "app-specific token issued", "login", user.Login, "description", description)
		return raw, nil
	}
	return "", common.ErrorInternal
}

// DeleteAllTokensForUser revokes every user-created token for the login.
// Idempotent; system session tokens are untouched.
func (s *TokenService) DeleteAllTokensForUser(ctx context.Context, login string) error {
	if err := s.repomanager.Tokens(s.db).DeleteAllNonSystemForLogin(ctx, login); err != nil {
		return err
	}
	s.logger.Info(ctx, "tokens revoked", "login", login)
	return nil
}

// GetAllNonSystemTokensForLogin lists the login's user-created tokens,
// most recently created first.
func (s *TokenService) GetAllNonSystemTokensForLogin(ctx context.Context, login string) ([]*models.AuthToken, error) {
	return s.repomanager.Tokens(s.db).GetAllNonSystemForLogin(ctx, login)
}

// PurgeExpiredTokens deletes token rows whose expiry has passed. Expired
// rows already fail lookups; this is housekeeping only.
func (s *TokenService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.Tokens(s.db).DeleteExpired(ctx, time.Now())
}
