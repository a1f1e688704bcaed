// Package server implements the edge redirect proxy: a stateless service
// fronting the identity server for integrators using a fixed pre-registered
// callback URL. Transient flow state lives in a sealed, single-use cookie;
// the code exchange happens server-side, so the verifier never reaches the
// browser.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/exchange"
	"github.com/jrsteele09/go-auth-client/internal/config"
	interrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	exchanger *exchange.Client
	cookies   *StateCookieCodec
	sites     *SitePatterns
}

func New(config config.Config) (*Server, error) {
	if strings.TrimSpace(config.GetClientID()) == "" {
		return nil, fmt.Errorf("[Server New] OAUTH_CLIENT_ID is required")
	}

	cookieCodec, err := NewStateCookieCodec(config.GetCookieSecret(), config.GetStateCookieTTL())
	if err != nil {
		return nil, interrors.Wrapf(err, "[Server New] failed to create state cookie codec")
	}

	endpoints := exchange.DefaultEndpoints(config.GetOAuthServerURL())
	exchanger := exchange.New(endpoints, config.GetClientID(),
		exchange.WithClientSecret(config.GetClientSecret()))

	s := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		exchanger: exchanger,
		cookies:   cookieCodec,
		sites:     NewSitePatterns(config.GetAllowedSites()),
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// callbackURL is the fixed pre-registered redirect URI of this proxy.
func (s *Server) callbackURL() string {
	return strings.TrimSuffix(s.config.GetBaseURL(), "/") + RouteAuthorizeCallback
}
