package api

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/logging"
	"github.com/sitestats/usersmanager/internal/server/config"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/repositories/repomanager"
	"github.com/sitestats/usersmanager/internal/server/services"
)

// fixtureTokens maps login → raw app token for the seeded accounts.
type fixture struct {
	api    *API
	tokens map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		TokenAuthSalt:                "test-salt",
		SessionTokenValidityDuration: time.Hour,
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := repomanager.NewInMemoryRepositoryManager()

	users := services.NewUserService(nil, rm, cfg, logger)
	tokenSvc := services.NewTokenService(nil, rm, users, cfg, logger)
	access := services.NewAccessService(nil, rm, logger)
	directory := services.NewDirectoryService(nil, rm, access)
	preferences := services.NewPreferenceService(nil, rm)

	for _, u := range []struct {
		login     string
		superuser bool
	}{
		{"login1", true}, {"login2", false}, {"login4", false},
	} {
		_, err := users.AddUser(ctx, u.login, u.login+"@example.com", "password", u.superuser)
		require.NoError(t, err)
	}
	require.NoError(t, access.SetUserAccess(ctx, "login2", 6, models.AccessAdmin))
	require.NoError(t, access.SetUserAccess(ctx, "login2", 3, models.AccessView))
	require.NoError(t, access.SetUserAccess(ctx, "login4", 3, models.AccessView))

	f := &fixture{
		api:    New(users, tokenSvc, access, directory, preferences, logger),
		tokens: map[string]string{},
	}
	for _, login := range []string{"login1", "login2", "login4"} {
		raw, err := tokenSvc.CreateAppSpecificTokenAuth(ctx, login, "password", "fixture", nil, 0)
		require.NoError(t, err)
		f.tokens[login] = raw
	}
	return f
}

func TestDo_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "bogus"} {
		_, err := f.api.Do(context.Background(), Request{Method: MethodGetUsers, TokenAuth: token})
		assert.ErrorIs(t, err, common.ErrorUnauthenticated)
	}
}

func TestDo_GetUsers_PerCallerVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.api.Do(ctx, Request{Method: MethodGetUsers, TokenAuth: f.tokens["login1"]})
	require.NoError(t, err)
	assert.Len(t, res.([]*models.User), 3)

	res, err = f.api.Do(ctx, Request{Method: MethodGetUsersLogin, TokenAuth: f.tokens["login4"]})
	require.NoError(t, err)
	assert.Equal(t, []string{"login4"}, res.([]string))
}

func TestDo_GetUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.api.Do(ctx, Request{
		Method:    MethodGetUser,
		TokenAuth: f.tokens["login1"],
		Params:    Params{UserLogin: "login2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "login2", res.(*models.User).Login)

	_, err = f.api.Do(ctx, Request{
		Method:    MethodGetUser,
		TokenAuth: f.tokens["login1"],
		Params:    Params{UserLogin: "ghost"},
	})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDo_AccessQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.api.Do(ctx, Request{
		Method:    MethodGetUsersAccessFromSite,
		TokenAuth: f.tokens["login2"],
		Params:    Params{IDSite: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccessAdmin, res.(map[string]models.Access)["login2"])

	// View-only on site 3: empty result, no error.
	res, err = f.api.Do(ctx, Request{
		Method:    MethodGetUsersWithSiteAccess,
		TokenAuth: f.tokens["login4"],
		Params:    Params{IDSite: 3, Access: "admin"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.([]string))
}

func TestDo_InvalidAccessLevel(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.Do(context.Background(), Request{
		Method:    MethodGetUsersSitesFromAccess,
		TokenAuth: f.tokens["login1"],
		Params:    Params{Access: "root"},
	})
	assert.Error(t, err)
}

func TestDo_CreateAppSpecificTokenAuth_NoBearerNeeded(t *testing.T) {
	f := newFixture(t)

	res, err := f.api.Do(context.Background(), Request{
		Method: MethodCreateAppSpecificTokenAuth,
		Params: Params{LoginOrEmail: "login2", Password: "password", Description: "cli"},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, res.(string))
}

func TestDo_CreateAppSpecificTokenAuth_WrongPasswordMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.Do(context.Background(), Request{
		Method: MethodCreateAppSpecificTokenAuth,
		Params: Params{LoginOrEmail: "login2", Password: "wrong", Description: "cli"},
	})
	require.Error(t, err)
	assert.Equal(t, "The current password you entered is not correct.", err.Error())
}

func TestDo_GetUserPreference_DefaultsAndUnknownLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.api.Do(ctx, Request{
		Method:    MethodGetUserPreference,
		TokenAuth: f.tokens["login1"],
		Params:    Params{PreferenceName: models.PreferenceDefaultReport},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", res.(string))

	res, err = f.api.Do(ctx, Request{
		Method:    MethodGetUserPreference,
		TokenAuth: f.tokens["login1"],
		Params:    Params{UserLogin: "foo", PreferenceName: models.PreferenceDefaultReportDate},
	})
	require.NoError(t, err)
	assert.Equal(t, "yesterday", res.(string))
}

func TestDo_UnknownMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.Do(context.Background(), Request{Method: Method(99), TokenAuth: f.tokens["login1"]})
	assert.Error(t, err)
}
