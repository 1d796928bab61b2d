package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sitestats/usersmanager/internal/logging"
	"github.com/sitestats/usersmanager/internal/server/config"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
)

// testEnv wires all services over a shared in-memory repository manager.
// rm gives tests direct store access for rows the services never create
// themselves, such as system session tokens.
type testEnv struct {
	rm          *repomanager.InMemoryRepositoryManager
	users       *UserService
	tokens      *TokenService
	access      *AccessService
	directory   *DirectoryService
	preferences *PreferenceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		TokenAuthSalt:                "test-salt",
		SessionTokenValidityDuration: time.Hour,
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := repomanager.NewInMemoryRepositoryManager()

	users := NewUserService(nil, rm, cfg, logger)
	tokens := NewTokenService(nil, rm, users, cfg, logger)
	access := NewAccessService(nil, rm, logger)
	return &testEnv{
		rm:          rm,
		users:       users,
		tokens:      tokens,
		access:      access,
		directory:   NewDirectoryService(nil, rm, access),
		preferences: NewPreferenceService(nil, rm),
	}
}

// seedFixture creates the tiered accounts the query tests run as:
// login1 is a superuser, login2 administers site 6 and views site 3,
// login4 only views site 3, login6 has no access at all.
func seedFixture(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()

	for _, u := range []struct {
		login     string
		superuser bool
	}{
		{"login1", true},
		{"login2", false},
		{"login4", false},
		{"login6", false},
	} {
		_, err := env.users.AddUser(ctx, u.login, u.login+"@example.com", "password", u.superuser)
		require.NoError(t, err)
	}

	require.NoError(t, env.access.SetUserAccess(ctx, "login2", 6, models.AccessAdmin))
	require.NoError(t, env.access.SetUserAccess(ctx, "login2", 3, models.AccessView))
	require.NoError(t, env.access.SetUserAccess(ctx, "login4", 3, models.AccessView))
}

func caller(login string, superuser bool) Caller {
	return Caller{Login: login, Superuser: superuser}
}

// seedSystemToken stores a system session token for login, keyed by the
// salted hash of raw, the way the credential store would see one.
func seedSystemToken(t *testing.T, env *testEnv, login, raw string) {
	t.Helper()
	err := env.rm.Tokens(nil).Create(context.Background(), &models.AuthToken{
		ID:     uuid.NewString(),
		Login:  login,
		Hash:   env.tokens.HashTokenAuth(raw),
		System: true,
	})
	require.NoError(t, err)
}
