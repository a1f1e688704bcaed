package server

import (
	"path"
	"strings"
)

// SitePatterns is the operator-configured allow-list of glob patterns a
// start request's site_id must match, e.g. "*.example.com" or "app.example.org".
type SitePatterns struct {
	patterns []string
}

func NewSitePatterns(patterns []string) *SitePatterns {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &SitePatterns{patterns: cleaned}
}

// Allowed reports whether siteID matches any pattern. An empty allow-list
// denies everything.
func (s *SitePatterns) Allowed(siteID string) bool {
	siteID = strings.ToLower(strings.TrimSpace(siteID))
	if siteID == "" {
		return false
	}
	for _, pattern := range s.patterns {
		if pattern == siteID {
			return true
		}
		if ok, err := path.Match(pattern, siteID); err == nil && ok {
			return true
		}
	}
	return false
}
