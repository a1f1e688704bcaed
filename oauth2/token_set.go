package oauth2

// TokenSet represents a successful response from the OAuth2 token endpoint,
// as defined in RFC 6749. Produced by the exchange client for both the
// authorization_code and refresh_token grants; owned by the token lifecycle
// manager once persisted. A TokenSet is always replaced whole - callers never
// observe a partially written set.
type TokenSet struct {
	// AccessToken is the bearer token used to access protected resources.
	// Usage: "Authorization: Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Only present when the server issued one (typically with the
	// offline_access scope). Servers may rotate it on refresh; when a refresh
	// response omits it, the previously stored value remains valid.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// TokenType indicates how to use the access token (always "bearer" in practice).
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Note: this is a hint - the authoritative expiry is the JWT's "exp" claim.
	ExpiresIn int `json:"expires_in,omitempty"`

	// Scope is the space-separated list of granted scopes.
	// May be narrower than what was requested.
	Scope string `json:"scope,omitempty"`

	// IDToken is the OpenID Connect ID token, present when the "openid"
	// scope was requested. This client treats it as opaque.
	IDToken *string `json:"id_token,omitempty"`
}

// HasRefreshToken reports whether the set carries a usable refresh token.
func (t *TokenSet) HasRefreshToken() bool {
	return t != nil && t.RefreshToken != nil && *t.RefreshToken != ""
}
