package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	interrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
)

// StateCookieName holds the sealed flow state between the start redirect and
// the provider's callback.
const StateCookieName = "oauth-state"

// stateCookiePayload is what gets sealed into the cookie: the flow state plus
// the provider name needed to format the legacy result message on finish.
type stateCookiePayload struct {
	oauthmodel.FlowState
	Provider string `json:"provider,omitempty"`
}

// StateCookieCodec seals flow state into an opaque, tamper-evident cookie
// value (NaCl secretbox: XSalsa20-Poly1305) and opens it again on the
// callback. The browser never sees the verifier in the clear, and a forged or
// modified cookie fails authentication.
type StateCookieCodec struct {
	key     [32]byte
	ttl     time.Duration
	nowFunc func() time.Time
}

const secretboxNonceLen = 24

func NewStateCookieCodec(secret string, ttl time.Duration) (*StateCookieCodec, error) {
	if secret == "" {
		return nil, errors.New("state cookie secret is required")
	}
	c := &StateCookieCodec{
		key:     sha256.Sum256([]byte(secret)),
		ttl:     ttl,
		nowFunc: time.Now,
	}
	if c.ttl == 0 {
		c.ttl = oauthmodel.DefaultFlowStateTTL
	}
	return c, nil
}

// Seal encrypts and authenticates the payload into a cookie-safe string.
func (c *StateCookieCodec) Seal(payload stateCookiePayload) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("StateCookieCodec.Seal marshal: %w", err)
	}

	var nonce [secretboxNonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("StateCookieCodec.Seal nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open authenticates and decrypts a cookie value. An undecodable or
// tampered value returns ErrInvalidSession; a structurally valid but
// outlived one returns ErrSessionExpired.
func (c *StateCookieCodec) Open(value string) (stateCookiePayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) <= secretboxNonceLen {
		return stateCookiePayload{}, interrors.ErrInvalidSession
	}

	var nonce [secretboxNonceLen]byte
	copy(nonce[:], raw[:secretboxNonceLen])
	plaintext, ok := secretbox.Open(nil, raw[secretboxNonceLen:], &nonce, &c.key)
	if !ok {
		return stateCookiePayload{}, interrors.ErrInvalidSession
	}

	var payload stateCookiePayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return stateCookiePayload{}, interrors.ErrInvalidSession
	}

	if payload.Expired(c.ttl, c.nowFunc()) {
		return stateCookiePayload{}, interrors.ErrSessionExpired
	}
	return payload, nil
}

// NewCookie wraps a sealed value in the cookie attributes the flow requires.
func (c *StateCookieCodec) NewCookie(sealedValue string) *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    sealedValue,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredStateCookie immediately invalidates the state cookie. The finish
// handler sets it on every outcome, making the cookie single-use.
func ExpiredStateCookie() *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
