package oauthmodel

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/oauth2"
)

// AuthorizationParameters holds everything needed to construct an OAuth2
// authorization request URL. These become the query parameters of the
// authorization endpoint.
type AuthorizationParameters struct {
	// ServerBaseURL is the authorization server's base URL.
	// Example: "https://auth.example.com"
	// The authorize endpoint is derived as {ServerBaseURL}/oauth/authorize.
	ServerBaseURL string

	// ClientID identifies the application requesting authorization.
	// Required: Yes
	// Example: "web-app-client"
	ClientID string

	// RedirectURI is where the authorization response will be sent.
	// Required: Yes
	// Security: Must exactly match a URI pre-registered with the server.
	RedirectURI string

	// Scopes are the permissions being requested; space-joined on the wire.
	// Example: []string{"openid", "profile", "email"}
	Scopes []string

	// State is the random per-flow correlation token echoed back by the
	// server on the callback. Compared against the stored flow state to
	// detect cross-site request forgery.
	State string

	// CodeChallenge is the PKCE challenge derived from the code verifier:
	// BASE64URL(SHA256(code_verifier)), no padding.
	CodeChallenge string

	// Nonce is an optional random value bound into the ID token by the
	// server. Omitted from the URL when empty.
	Nonce string

	// Provider is an optional upstream provider hint, passed through for
	// integrations that front more than one identity source. Not part of the
	// authorization URL.
	Provider string
}

// AuthorizeURL assembles the absolute URL of the authorization endpoint.
// Pure; the only failure mode is a malformed ServerBaseURL.
func (p AuthorizationParameters) AuthorizeURL() (string, error) {
	base, err := url.Parse(strings.TrimSuffix(p.ServerBaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", ErrMalformedServerURL
	}

	endpoint := *base
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") + "/oauth/authorize"

	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("response_type", string(oauth2.CodeResponseType))
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("scope", strings.Join(p.Scopes, " "))
	q.Set("state", p.State)
	q.Set("code_challenge", p.CodeChallenge)
	q.Set("code_challenge_method", string(oauth2.CodeMethodTypeS256))
	if p.Nonce != "" {
		q.Set("nonce", p.Nonce)
	}
	endpoint.RawQuery = q.Encode()

	return endpoint.String(), nil
}
