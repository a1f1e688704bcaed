// Package pkce generates the per-attempt secrets of an authorization code
// flow: the PKCE verifier/challenge pair (RFC 7636) and the random state
// correlation token. Generation has no runtime failure mode - an unavailable
// system random source is a fatal precondition and panics.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// MethodS256 is the only challenge method this package produces.
const MethodS256 = "S256"

// stateBytes gives state tokens 256 bits of entropy (43 base64url chars),
// keeping collision probability across any realistic run negligible.
const stateBytes = 32

// Challenge is a PKCE verifier/challenge pair, created once per authorization
// attempt. The verifier never leaves the initiating context except inside the
// token exchange request body, and is discarded as soon as the exchange
// succeeds or fails.
type Challenge struct {
	// Verifier is a 43-128 character URL-safe random string.
	Verifier string

	// Challenge is BASE64URL(SHA256(Verifier)), no padding.
	Challenge string

	// Method is always "S256".
	Method string
}

// Generate returns a fresh PKCE pair.
func Generate() Challenge {
	verifier := oauth2.GenerateVerifier()
	sum := sha256.Sum256([]byte(verifier))
	return Challenge{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
		Method:    MethodS256,
	}
}

// State returns a random correlation token for CSRF detection: 43 characters
// from the URL-safe base64 alphabet.
func State() string {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		panic("pkce: system random source unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
