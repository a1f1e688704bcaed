package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-client/exchange"
	interrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
)

// AuthorizeCallbackHandler finishes a proxied flow. The state cookie is
// expired in the response on every outcome - a captured callback request
// cannot be replayed. The state check always precedes the exchange; a
// mismatched callback never reaches the token endpoint.
func (s *Server) AuthorizeCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Single-use: invalidate the cookie whatever happens next.
		http.SetCookie(w, ExpiredStateCookie())

		provider := s.config.GetDefaultProvider()

		cookie, err := r.Cookie(StateCookieName)
		if err != nil {
			s.renderErrorPage(w, http.StatusBadRequest, provider, "",
				ErrorCodeSessionExpired, "Your sign-in session has expired. Please start again.")
			return
		}

		payload, err := s.cookies.Open(cookie.Value)
		if err != nil {
			code, detail := ErrorCodeInvalidSession, "Your sign-in session could not be read. Please start again."
			if errors.Is(err, interrors.ErrSessionExpired) {
				code, detail = ErrorCodeSessionExpired, "Your sign-in session has expired. Please start again."
			}
			s.renderErrorPage(w, http.StatusBadRequest, provider, "", code, detail)
			return
		}
		if payload.Provider != "" {
			provider = payload.Provider
		}

		query := r.URL.Query()
		if serverError := query.Get("error"); serverError != "" {
			// The authorization server reported a flow error; render it verbatim.
			s.renderErrorPage(w, http.StatusBadRequest, provider, payload.State,
				serverError, query.Get("error_description"))
			return
		}

		if query.Get("state") != payload.State {
			s.renderErrorPage(w, http.StatusBadRequest, provider, payload.State,
				ErrorCodeCsrfDetected, "The sign-in response did not match the pending request.")
			return
		}

		tokenSet, err := s.exchanger.ExchangeCode(r.Context(), query.Get("code"), payload.Verifier, payload.RedirectURI)
		if err != nil {
			log.Warn().Err(err).Msg("code exchange failed on proxied callback")
			code, detail := ErrorCodeExchangeFailed, "The authorization code could not be exchanged."

			var exchangeErr *exchange.TokenExchangeError
			var networkErr *exchange.NetworkError
			switch {
			case errors.As(err, &exchangeErr):
				code, detail = exchangeErr.Code, exchangeErr.Description
			case errors.As(err, &networkErr):
				code, detail = ErrorCodeNetworkError, "The authorization server could not be reached."
			}
			s.renderErrorPage(w, http.StatusBadGateway, provider, payload.State, code, detail)
			return
		}

		s.renderSuccessPage(w, oauthmodel.CallbackMessage{
			Type:  oauthmodel.CallbackMessageType,
			State: payload.State,
			Token: tokenSet,
		}, provider)
	}
}
