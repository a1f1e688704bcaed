package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/exchange"
)

const contentTypeJSON = "application/json; charset=utf-8"

// UserinfoHandler is a bearer-authenticated passthrough to the identity
// server's userinfo endpoint.
func (s *Server) UserinfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		bearer := strings.TrimPrefix(authorization, "Bearer ")
		if bearer == "" || bearer == authorization {
			writeJSONError(w, "invalid_request", "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := s.exchanger.Userinfo(r.Context(), bearer)
		if err != nil {
			var exchangeErr *exchange.TokenExchangeError
			if errors.As(err, &exchangeErr) {
				writeJSONError(w, exchangeErr.Code, exchangeErr.Description, exchangeErr.Status)
				return
			}
			writeJSONError(w, "server_error", err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(claims)
	}
}

func writeJSONError(w http.ResponseWriter, code, description string, status int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}
