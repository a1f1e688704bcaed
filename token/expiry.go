package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenExpiry decodes the access token's "exp" claim without verifying
// the signature. This is a liveness hint for refresh scheduling only - it
// must never drive an authorization decision; only the identity server's own
// validation of the bearer token is authoritative.
//
// Returns ok=false for tokens that are not JWTs or carry no usable expiry.
// Callers treat that as expired (fail closed).
func AccessTokenExpiry(rawToken string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, false
	}

	exp, ok := claims["exp"].(float64)
	if !ok || exp <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}
