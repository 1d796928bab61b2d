package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/dbx"
	"github.com/sitestats/usersmanager/internal/logging"
	"github.com/sitestats/usersmanager/internal/server/auth"
	"github.com/sitestats/usersmanager/internal/server/config"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
)

// UserService is the credential store: account CRUD, password verification
// and bearer-credential resolution.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	tokenAuthSalt                string
	sessionTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		logger:                       l.With("component", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		tokenAuthSalt:                cfg.TokenAuthSalt,
		sessionTokenValidityDuration: cfg.SessionTokenValidityDuration,
	}
}

// AddUser creates an account with a bcrypt-hashed password. Login and email
// collisions surface as common.ErrorDuplicateIdentity.
func (s *UserService) AddUser(ctx context.Context, login, email, password string, superuser bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Login: login, Email: email, PasswordHash: string(hash), Superuser: superuser}
	if err := s.repomanager.Users(s.db).Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "login", login, "superuser", superuser)
	return user, nil
}

// DeleteUser removes the account together with its grants, preferences and
// tokens, system sessions included. With a SQL backend the deletes run in one
// transaction; stores without a transactional handle fall back to
// sequential idempotent deletes. A login is never reused after deletion
// within a running system.
func (s *UserService) DeleteUser(ctx context.Context, login string) error {
	var err error
	if s.db != nil {
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return s.deleteUser(ctx, tx, login)
		})
	} else {
		err = s.deleteUser(ctx, s.db, login)
	}
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "login", login)
	return nil
}

func (s *UserService) deleteUser(ctx context.Context, db dbx.DBTX, login string) error {
	if err := s.repomanager.Access(db).DeleteAllForLogin(ctx, login); err != nil {
		return err
	}
	if err := s.repomanager.Preferences(db).DeleteAllForLogin(ctx, login); err != nil {
		return err
	}
	if err := s.repomanager.Tokens(db).DeleteAllForLogin(ctx, login); err != nil {
		return err
	}
	return s.repomanager.Users(db).Delete(ctx, login)
}

// UpdatePassword re-hashes and stores a new password; the repository bumps
// ts_password_modified.
func (s *UserService) UpdatePassword(ctx context.Context, login, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.repomanager.Users(s.db).UpdatePassword(ctx, login, string(hash))
}

// SetSuperuser toggles the global superuser flag.
func (s *UserService) SetSuperuser(ctx context.Context, login string, superuser bool) error {
	return s.repomanager.Users(s.db).SetSuperuser(ctx, login, superuser)
}

// CheckPassword verifies a cleartext password against the stored hash.
// Unresolvable identity and wrong password produce the same error so the
// caller cannot probe which logins exist.
func (s *UserService) CheckPassword(ctx context.Context, user *models.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return common.ErrorInvalidCredentials
	}
	return nil
}

// ResolveLoginOrEmail resolves an identity string to a user, trying exact
// login match first, then email.
func (s *UserService) ResolveLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, loginOrEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return repo.GetByEmail(ctx, loginOrEmail)
}

// GetUserByTokenAuth resolves a presented bearer credential to its owning
// user. Two separate indexed lookups are tried in sequence: first the
// auth-token store by salted hash (expired rows treated as absent), then
// the legacy path where the credential is the stored password hash itself.
func (s *UserService) GetUserByTokenAuth(ctx context.Context, tokenAuth string) (*models.User, error) {
	tokensRepo := s.repomanager.Tokens(s.db)
	usersRepo := s.repomanager.Users(s.db)

	now := time.Now()
	token, err := tokensRepo.GetByHash(ctx, HashTokenAuth(tokenAuth, s.tokenAuthSalt), now)
	if err == nil {
		if err := tokensRepo.TouchLastUsed(ctx, token.ID, now); err != nil {
			s.logger.Warn(ctx, "failed to record token use", "error", err.Error())
		}
		return usersRepo.GetByLogin(ctx, token.Login)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	return usersRepo.GetByPasswordHash(ctx, tokenAuth)
}

// Login verifies the password and mints a session JWT, the system
// credential distinct from app-specific tokens.
func (s *UserService) Login(ctx context.Context, login, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorInvalidCredentials
		}
		return "", common.ErrorInternal
	}
	if err := s.CheckPassword(ctx, user, password); err != nil {
		return "", err
	}
	return auth.GenerateSessionToken(user.Login, s.jwtSecret, s.sessionTokenValidityDuration)
}

// ResolveCaller maps a bearer credential to a caller identity, trying the
// session JWT first and the token-auth stores second. Absent or
// unresolvable credentials yield common.ErrorUnauthenticated.
func (s *UserService) ResolveCaller(ctx context.Context, tokenAuth string) (Caller, error) {
	if tokenAuth == "" {
		return Caller{}, common.ErrorUnauthenticated
	}

	if login, err := auth.GetLoginFromToken(tokenAuth, s.jwtSecret); err == nil {
		user, err := s.repomanager.Users(s.db).GetByLogin(ctx, login)
		if err != nil {
			return Caller{}, common.ErrorUnauthenticated
		}
		return Caller{Login: user.Login, Superuser: user.Superuser}, nil
	}

	user, err := s.GetUserByTokenAuth(ctx, tokenAuth)
	if err != nil {
		return Caller{}, common.ErrorUnauthenticated
	}
	return Caller{Login: user.Login, Superuser: user.Superuser}, nil
}
