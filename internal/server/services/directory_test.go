package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitestats/usersmanager/internal/common"
)

func TestGetUsers_SuperuserSeesAll(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	users, err := env.directory.GetUsers(context.Background(), caller("login1", true))
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "login1", users[0].Login, "ordered by login")
}

func TestGetUsers_SiteAdminSeesSharedSitesAndSelf(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	users, err := env.directory.GetUsers(context.Background(), caller("login2", false))
	require.NoError(t, err)

	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.Login)
	}
	// login2 administers site 6, where only login2 holds a grant.
	assert.Equal(t, []string{"login2"}, logins)
}

func TestGetUsers_ViewOnlySeesSelf(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	users, err := env.directory.GetUsers(context.Background(), caller("login4", false))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "login4", users[0].Login)
}

func TestGetUsersLogin(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	logins, err := env.directory.GetUsersLogin(context.Background(), caller("login1", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"login1", "login2", "login4", "login6"}, logins)

	logins, err = env.directory.GetUsersLogin(context.Background(), caller("login4", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"login4"}, logins)
}

func TestGetUser_SelfAlwaysVisible(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	user, err := env.directory.GetUser(context.Background(), caller("login4", false), "login4")
	require.NoError(t, err)
	assert.Equal(t, "login4@example.com", user.Email)
}

func TestGetUser_NonexistentLogin(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	_, err := env.directory.GetUser(context.Background(), caller("login1", true), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUser_InvisibleLoginLooksNonexistent(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	// login6 exists but shares no site with login4; the lookup must be
	// indistinguishable from a missing account.
	_, err := env.directory.GetUser(context.Background(), caller("login4", false), "login6")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUser_SuperuserSeesAnyone(t *testing.T) {
	env := newTestEnv(t)
	seedFixture(t, env)

	for _, login := range []string{"login1", "login2", "login4", "login6"} {
		user, err := env.directory.GetUser(context.Background(), caller("login1", true), login)
		require.NoError(t, err)
		assert.Equal(t, login, user.Login)
	}
}
