// Package common defines shared constants and sentinel errors used across
// the users-manager components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound          = errors.New("not found")
	ErrorDuplicateIdentity = errors.New("duplicate identity")

	// Service-level errors (generic/internal flow control).
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthenticated = errors.New("unauthenticated")

	// ErrorInvalidCredentials carries the exact user-visible message shown
	// when token creation is attempted with a wrong password or an identity
	// that cannot be resolved. The same error covers both cases so the
	// response does not reveal whether the login exists.
	ErrorInvalidCredentials = errors.New("The current password you entered is not correct.")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
)
