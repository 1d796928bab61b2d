// Package services contains the server-side business logic of the users
// manager: credential storage, token issuance, access evaluation, the
// directory query surface and user preferences.
package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// Caller identifies the authenticated account a request runs as. It is
// resolved from the presented bearer credential on every call and passed
// explicitly through the service layer; there is no process-global
// "current user".
type Caller struct {
	Login     string
	Superuser bool
}

// HashTokenAuth computes the at-rest hash of a raw token-auth value: hex of
// SHA-256 over the configured salt concatenated with the raw value. Raw
// values are never persisted; every lookup goes through this function.
func HashTokenAuth(tokenAuth string, salt string) string {
	sum := sha256.Sum256([]byte(salt + tokenAuth))
	return hex.EncodeToString(sum[:])
}
