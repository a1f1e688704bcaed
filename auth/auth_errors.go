package auth

import "errors"

var (
	// ErrConfiguration is a fatal pre-flight failure: the client cannot run
	// without a client id, server URL and redirect URI.
	ErrConfiguration = errors.New("invalid client configuration")
)
