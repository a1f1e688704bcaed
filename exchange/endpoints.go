package exchange

import "strings"

// Endpoints holds the identity server URLs this client talks to.
type Endpoints struct {
	AuthURL     string // authorization endpoint (consumed by URL builders, kept for completeness)
	TokenURL    string // token endpoint
	RevokeURL   string // revocation endpoint
	UserinfoURL string // userinfo endpoint (bearer-authenticated passthrough)
}

// DefaultEndpoints derives the conventional endpoint layout from a server
// base URL: {server}/oauth/{authorize,token,revoke,userinfo}.
func DefaultEndpoints(serverBaseURL string) Endpoints {
	base := strings.TrimSuffix(serverBaseURL, "/")
	return Endpoints{
		AuthURL:     base + "/oauth/authorize",
		TokenURL:    base + "/oauth/token",
		RevokeURL:   base + "/oauth/revoke",
		UserinfoURL: base + "/oauth/userinfo",
	}
}
