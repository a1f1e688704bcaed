package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/pkce"
)

// AuthorizeStartHandler begins a proxied authorization flow: it validates the
// requesting site against the allow-list, generates the per-attempt secrets,
// seals them into the state cookie, and redirects to the authorize endpoint.
func (s *Server) AuthorizeStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		siteID := query.Get("site_id")
		provider := query.Get("provider")
		if provider == "" {
			provider = s.config.GetDefaultProvider()
		}
		scopes := strings.Fields(query.Get("scope"))
		if len(scopes) == 0 {
			scopes = s.config.GetDefaultScopes()
		}

		if !s.sites.Allowed(siteID) {
			// Inline error page; no redirect ever happens for a disallowed site.
			s.renderErrorPage(w, http.StatusForbidden, provider, "",
				ErrorCodeUnsupportedDomain, "The site \""+siteID+"\" is not configured for sign-in through this service.")
			return
		}

		challenge := pkce.Generate()
		flowState := oauthmodel.FlowState{
			State:       pkce.State(),
			Verifier:    challenge.Verifier,
			RedirectURI: s.callbackURL(),
			CreatedAt:   time.Now(),
		}

		sealed, err := s.cookies.Seal(stateCookiePayload{FlowState: flowState, Provider: provider})
		if err != nil {
			log.Error().Err(err).Msg("failed to seal state cookie")
			s.renderErrorPage(w, http.StatusInternalServerError, provider, "",
				ErrorCodeInternal, "Could not start the sign-in flow. Please try again.")
			return
		}

		params := oauthmodel.AuthorizationParameters{
			ServerBaseURL: s.config.GetOAuthServerURL(),
			ClientID:      s.config.GetClientID(),
			RedirectURI:   flowState.RedirectURI,
			Scopes:        scopes,
			State:         flowState.State,
			CodeChallenge: challenge.Challenge,
		}
		authorizeURL, err := params.AuthorizeURL()
		if err != nil {
			log.Error().Err(err).Msg("misconfigured authorization server url")
			s.renderErrorPage(w, http.StatusInternalServerError, provider, "",
				ErrorCodeInternal, "Sign-in is misconfigured. Please contact the site operator.")
			return
		}

		http.SetCookie(w, s.cookies.NewCookie(sealed))
		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}
