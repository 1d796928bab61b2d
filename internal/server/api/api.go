// Package api exposes the users-manager operations as an RPC-style surface
// independent of transport. Dispatch goes through an explicit table keyed
// by a Method enum, built once at startup; there is no reflection and no
// string-based method lookup at call time.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/logging"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/services"
)

// Method enumerates the dispatchable operations.
type Method int

const (
	MethodGetUser Method = iota
	MethodGetUsers
	MethodGetUsersLogin
	MethodGetUsersAccessFromSite
	MethodGetUsersSitesFromAccess
	MethodGetUsersWithSiteAccess
	MethodCreateAppSpecificTokenAuth
	MethodGetUserPreference
)

// Params carries the union of operation parameters. Each handler reads only
// the fields its operation defines.
type Params struct {
	UserLogin      string
	IDSite         int64
	Access         string
	LoginOrEmail   string
	Password       string
	Description    string
	ExpireDate     *time.Time
	ExpireHours    int
	PreferenceName string
}

// Request is one API invocation. TokenAuth is the caller's bearer
// credential, resolved to an identity on every call.
type Request struct {
	Method    Method
	TokenAuth string
	Params    Params
}

type handler func(ctx context.Context, caller services.Caller, p Params) (any, error)

// API is the dispatch surface. The handler table is filled in New and
// never mutated afterwards.
type API struct {
	users       *services.UserService
	tokens      *services.TokenService
	access      *services.AccessService
	directory   *services.DirectoryService
	preferences *services.PreferenceService
	logger      logging.Logger

	handlers map[Method]handler
}

func New(users *services.UserService, tokens *services.TokenService, access *services.AccessService,
	directory *services.DirectoryService, preferences *services.PreferenceService, l logging.Logger) *API {

	a := &API{
		users:       users,
		tokens:      tokens,
		access:      access,
		directory:   directory,
		preferences: preferences,
		logger:      l.With("component", "api"),
	}

	a.handlers = map[Method]handler{
		MethodGetUser: func(ctx context.Context, caller services.Caller, p Params) (any, error) {
			return a.directory.GetUser(ctx, caller, p.UserLogin)
		},
		MethodGetUsers: func(ctx context.Context, caller services.Caller, p Params) (any, error) {
			return a.directory.GetUsers(ctx, caller)
		},
		MethodGetUsersLogin: func(ctx context.Context, caller services.Caller, p Params) (any, error) {
			return a.directory.GetUsersLogin(ctx, caller)
		},
		MethodGetUsersAccessFromSite: func(ctx context.Context, caller services.Caller, p Params) (any, error) {
			return a.access.GetUsersAccessFromSite(ctx, caller, p.IDSite)
		},
		MethodGetUsersSitesFromAccess: func(ctx context.Context, caller services.Caller, p Params) (any, error) {
			level, err := models.ParseAccess(p.Access)
			if err != nil {
				return nil, err
			}
			return a.access.GetUsersSitesFromAccess(ctx, caller, level)
		},
		MethodGetUsersWithSiteAccess: func(ctx context.Context, caller services.Caller, p Params) (any, error) {
			level, err := models.ParseAccess(p.Access)
			if err != nil {
				return nil, err
			}
			return a.access.GetUsersWithSiteAccess(ctx, caller, p.IDSite, level)
		},
		MethodGetUserPreference: func(ctx context.Context, caller services.Caller, p Params) (any, error) {
			return a.preferences.GetUserPreference(ctx, caller, p.UserLogin, p.PreferenceName)
		},
	}
	return a
}

// Do executes one request. Every operation except token creation requires
// a resolvable bearer credential; token creation authenticates with the
// supplied password instead.
func (a *API) Do(ctx context.Context, req Request) (any, error) {
	if req.Method == MethodCreateAppSpecificTokenAuth {
		return a.tokens.CreateAppSpecificTokenAuth(ctx, req.Params.LoginOrEmail, req.Params.Password,
			req.Params.Description, req.Params.ExpireDate, req.Params.ExpireHours)
	}

	h, ok := a.handlers[req.Method]
	if !ok {
		return nil, fmt.Errorf("unknown method %d", req.Method)
	}

	caller, err := a.users.ResolveCaller(ctx, req.TokenAuth)
	if err != nil {
		a.logger.Warn(ctx, "request with unresolvable credential", "method", int(req.Method))
		return nil, common.ErrorUnauthenticated
	}

	return h(ctx, caller, req.Params)
}
