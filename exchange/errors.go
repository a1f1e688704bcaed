package exchange

import "fmt"

// NetworkError wraps a transport-level failure reaching the authorization
// server (connection refused, timeout, cancelled context).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error talking to authorization server: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TokenExchangeError is a non-success response from the token or revocation
// endpoint, carrying the server's error code and description verbatim.
type TokenExchangeError struct {
	Code        string // server error code, e.g. "invalid_grant"
	Description string // optional error_description
	Status      int    // HTTP status of the response
}

func (e *TokenExchangeError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("token endpoint returned %s (http %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("token endpoint returned %s: %s (http %d)", e.Code, e.Description, e.Status)
}

// MalformedResponseError indicates the server replied with a body that could
// not be decoded into either a token set or a standard OAuth error.
type MalformedResponseError struct {
	Status int
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from authorization server (http %d): %v", e.Status, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
