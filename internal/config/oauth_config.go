package config

import "strings"

type OAuthConfig interface {
	GetOAuthServerURL() string
	GetClientID() string
	GetClientSecret() string
	GetDefaultScopes() []string
	GetDefaultProvider() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetOAuthServerURL returns the identity server's base URL, e.g.
// "https://auth.example.com".
func (OAuth) GetOAuthServerURL() string {
	return GetEnv("OAUTH_SERVER_URL", "http://localhost:9090")
}

func (OAuth) GetClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

// GetClientSecret returns the confidential client secret. The proxy runs
// server-side and may safely hold one; never deploy it to an untrusted context.
func (OAuth) GetClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

func (OAuth) GetDefaultScopes() []string {
	return strings.Fields(GetEnv("OAUTH_SCOPES", "openid profile email"))
}

// GetDefaultProvider names the upstream provider in legacy callback messages
// when the start request does not specify one.
func (OAuth) GetDefaultProvider() string {
	return GetEnv("OAUTH_PROVIDER", "oauth")
}
