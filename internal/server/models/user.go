// Package models defines the persistent entities of the users manager:
// users, their auth tokens, per-site access grants and preferences.
package models

import "time"

// User is a platform account. Login is the immutable primary identifier;
// Email is an alternate unique lookup key.
type User struct {
	Login              string
	Email              string
	PasswordHash       string
	Superuser          bool
	DateRegistered     time.Time
	TsPasswordModified time.Time
	TsChangesViewed    time.Time
}
