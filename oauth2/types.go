package oauth2

// ResponseType represents the OAuth 2.0 response type requested from the
// authorization endpoint. This client only ever asks for an authorization code.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// Example: /oauth/authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
// Used to prevent authorization code interception attacks (especially for public clients).
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Server validates: SHA256(provided code_verifier) == stored code_challenge
	// This is the only method this client emits; "plain" is never sent.
	CodeMethodTypeS256 CodeMethodType = "S256"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, redirect_uri, code_verifier,
	// plus client_secret for confidential integrations.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenCodeGrant exchanges a refresh token for a new access token.
	// Token request includes: refresh_token, client_id (+ client_secret).
	// The refresh token may be rotated by the server; rotation is supported
	// but never assumed.
	RefreshTokenCodeGrant GrantType = "refresh_token"
)
