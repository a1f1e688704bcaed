package config

import (
	"strings"
	"time"
)

type ProxyConfig interface {
	GetAllowedSites() []string
	GetCookieSecret() string
	GetStateCookieTTL() time.Duration
}

type Proxy struct{}

var _ ProxyConfig = Proxy{}

// GetAllowedSites returns the operator-configured allow-list of glob patterns
// matched against the site_id of start requests, e.g.
// "*.example.com,app.example.org".
func (Proxy) GetAllowedSites() []string {
	raw := GetEnv("ALLOWED_SITES", "")
	if raw == "" {
		return nil
	}
	patterns := strings.Split(raw, ",")
	for i := range patterns {
		patterns[i] = strings.TrimSpace(patterns[i])
	}
	return patterns
}

// GetCookieSecret returns the key material sealing the transient flow-state
// cookie. Required; the proxy refuses to start without it.
func (Proxy) GetCookieSecret() string {
	return GetEnv("STATE_COOKIE_SECRET", "")
}

// GetStateCookieTTL bounds the lifetime of an authorization attempt held in
// the state cookie.
func (Proxy) GetStateCookieTTL() time.Duration {
	return 10 * time.Minute
}
