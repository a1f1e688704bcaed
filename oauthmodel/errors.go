package oauthmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedServerURL indicates the configured authorization server base
	// URL could not be parsed into an absolute URL.
	ErrMalformedServerURL = errors.New("malformed authorization server url")

	// ErrCsrfDetected indicates a callback carried a state token that does not
	// match the flow state held by the initiator. A mismatched callback must
	// never reach the token endpoint.
	ErrCsrfDetected = errors.New("state mismatch on authorization callback")

	// ErrNotCallbackMessage indicates a window message was not an
	// authorization callback at all. Transports ignore such messages and keep
	// waiting.
	ErrNotCallbackMessage = errors.New("not an authorization callback message")

	// ErrMalformedCallbackMessage indicates a message looked like a callback
	// but could not be decoded into a usable result.
	ErrMalformedCallbackMessage = errors.New("malformed authorization callback message")
)

// AuthorizationDeniedError is returned when the authorization server reported
// an OAuth error on the callback (e.g. the user declined consent).
type AuthorizationDeniedError struct {
	Code        string // OAuth error code, e.g. "access_denied"
	Description string // optional error_description from the server
}

func (e *AuthorizationDeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization denied: %s", e.Code)
	}
	return fmt.Sprintf("authorization denied: %s (%s)", e.Code, e.Description)
}
