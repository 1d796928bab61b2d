// Package auth implements the system session credential: a short-lived
// HS256 JWT carrying the caller's login. Session tokens are distinct from
// the long-lived app-specific tokens managed by the token service.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sitestats/usersmanager/internal/common"
)

// Claims extends the registered claim set with the account login.
type Claims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
}

// GenerateSessionToken mints a signed session token for login, valid for
// validityDuration from now.
func GenerateSessionToken(login string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Login: login,
	})
	return token.SignedString(secretKey)
}

// GetLoginFromToken verifies the session token signature and expiry and
// returns the embedded login.
func GetLoginFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	return claims.Login, nil
}
