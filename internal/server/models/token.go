package models

import "time"

// AuthToken is a credential bound to a single login. Only the hash of the
// raw token value is stored; the raw value leaves the system exactly once,
// at creation. System tokens (sessions) are excluded from user-facing
// listings.
type AuthToken struct {
	ID          string
	Login       string
	Description string
	Hash        string
	System      bool
	DateCreated time.Time
	DateExpired *time.Time
	LastUsed    *time.Time
}

// Expired reports whether the token's expiry has passed at instant now.
// A nil DateExpired means the token never expires.
func (t *AuthToken) Expired(now time.Time) bool {
	return t.DateExpired != nil && !t.DateExpired.After(now)
}
