package oauth2

// ErrorResponse is the error body returned by the token and revocation
// endpoints, as defined in RFC 6749 §5.2.
type ErrorResponse struct {
	// Error is the machine-readable error code, e.g. "invalid_grant".
	Error string `json:"error"`

	// ErrorDescription is the optional human-readable detail.
	ErrorDescription string `json:"error_description,omitempty"`
}
