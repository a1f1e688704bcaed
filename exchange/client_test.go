package exchange_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-auth-client/exchange"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "test-client-1"
	testClientSecret = "test-secret-1"
	testRedirectURI  = "http://localhost:3000/callback"
	testCodeVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
)

// identityServer is a scripted stand-in for the identity server's token,
// revocation and userinfo endpoints.
type identityServer struct {
	*httptest.Server

	tokenResponse  string
	tokenStatus    int
	revokeStatus   int
	userinfoStatus int

	lastTokenForm  url.Values
	lastRevokeForm url.Values
	lastBearer     string
	tokenCalls     int
}

func newIdentityServer(t *testing.T) *identityServer {
	t.Helper()

	s := &identityServer{
		tokenResponse:  `{"access_token":"at-1","token_type":"bearer","expires_in":900}`,
		tokenStatus:    http.StatusOK,
		revokeStatus:   http.StatusOK,
		userinfoStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		s.lastTokenForm = r.PostForm
		s.tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.tokenStatus)
		_, _ = w.Write([]byte(s.tokenResponse))
	})
	mux.HandleFunc("POST /oauth/revoke", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		s.lastRevokeForm = r.PostForm
		w.WriteHeader(s.revokeStatus)
	})
	mux.HandleFunc("GET /oauth/userinfo", func(w http.ResponseWriter, r *http.Request) {
		s.lastBearer = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.userinfoStatus)
		_, _ = w.Write([]byte(`{"sub":"user-1","email":"john.doe@example.com"}`))
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *identityServer) client(options ...exchange.ClientOption) *exchange.Client {
	return exchange.New(exchange.DefaultEndpoints(s.URL), testClientID, options...)
}

// TestExchangeCode_Success tests the authorization_code grant request shape
// and response decoding
func TestExchangeCode_Success(t *testing.T) {
	server := newIdentityServer(t)
	client := server.client(exchange.WithClientSecret(testClientSecret))

	tokenSet, err := client.ExchangeCode(context.Background(), "auth-code-1", testCodeVerifier, testRedirectURI)

	require.NoError(t, err)
	require.Equal(t, "at-1", tokenSet.AccessToken)
	require.Equal(t, "bearer", tokenSet.TokenType)
	require.Equal(t, 900, tokenSet.ExpiresIn)

	form := server.lastTokenForm
	require.Equal(t, "authorization_code", form.Get("grant_type"))
	require.Equal(t, "auth-code-1", form.Get("code"))
	require.Equal(t, testCodeVerifier, form.Get("code_verifier"))
	require.Equal(t, testRedirectURI, form.Get("redirect_uri"))
	require.Equal(t, testClientID, form.Get("client_id"))
	require.Equal(t, testClientSecret, form.Get("client_secret"))
}

// TestExchangeCode_PublicClient tests that a client without a secret never
// sends one
func TestExchangeCode_PublicClient(t *testing.T) {
	server := newIdentityServer(t)
	client := server.client()

	_, err := client.ExchangeCode(context.Background(), "auth-code-1", testCodeVerifier, testRedirectURI)

	require.NoError(t, err)
	require.False(t, server.lastTokenForm.Has("client_secret"))
}

// TestExchangeCode_ServerError tests that a standard OAuth error body becomes
// a typed TokenExchangeError carrying the server's code verbatim
func TestExchangeCode_ServerError(t *testing.T) {
	server := newIdentityServer(t)
	server.tokenStatus = http.StatusBadRequest
	server.tokenResponse = `{"error":"invalid_grant","error_description":"code expired"}`
	client := server.client()

	_, err := client.ExchangeCode(context.Background(), "stale-code", testCodeVerifier, testRedirectURI)

	var exchangeErr *exchange.TokenExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	require.Equal(t, "invalid_grant", exchangeErr.Code)
	require.Equal(t, "code expired", exchangeErr.Description)
	require.Equal(t, http.StatusBadRequest, exchangeErr.Status)
}

// TestExchangeCode_MalformedResponses tests bodies that decode into neither a
// token set nor a standard error
func TestExchangeCode_MalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
	}{
		{name: "html error page", status: http.StatusBadGateway, response: "<html>upstream down</html>"},
		{name: "success without access_token", status: http.StatusOK, response: `{"token_type":"bearer"}`},
		{name: "success not json", status: http.StatusOK, response: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newIdentityServer(t)
			server.tokenStatus = tt.status
			server.tokenResponse = tt.response
			client := server.client()

			_, err := client.ExchangeCode(context.Background(), "auth-code-1", testCodeVerifier, testRedirectURI)

			var malformedErr *exchange.MalformedResponseError
			require.ErrorAs(t, err, &malformedErr)
			require.Equal(t, tt.status, malformedErr.Status)
		})
	}
}

// TestExchangeCode_NetworkError tests that an unreachable server surfaces as
// a NetworkError
func TestExchangeCode_NetworkError(t *testing.T) {
	server := newIdentityServer(t)
	client := server.client()
	server.Close() // connection refused from here on

	_, err := client.ExchangeCode(context.Background(), "auth-code-1", testCodeVerifier, testRedirectURI)

	var networkErr *exchange.NetworkError
	require.ErrorAs(t, err, &networkErr)
}

// TestRefresh_Success tests the refresh_token grant request shape
func TestRefresh_Success(t *testing.T) {
	server := newIdentityServer(t)
	server.tokenResponse = `{"access_token":"at-2","refresh_token":"rt-2","token_type":"bearer"}`
	client := server.client(exchange.WithClientSecret(testClientSecret))

	tokenSet, err := client.Refresh(context.Background(), "rt-1")

	require.NoError(t, err)
	require.Equal(t, "at-2", tokenSet.AccessToken)
	require.True(t, tokenSet.HasRefreshToken())
	require.Equal(t, "rt-2", *tokenSet.RefreshToken)

	form := server.lastTokenForm
	require.Equal(t, "refresh_token", form.Get("grant_type"))
	require.Equal(t, "rt-1", form.Get("refresh_token"))
	require.Equal(t, testClientID, form.Get("client_id"))
}

// TestRefresh_NoRotation tests a server that does not rotate refresh tokens;
// the returned set then carries no refresh token and callers must keep the
// old one
func TestRefresh_NoRotation(t *testing.T) {
	server := newIdentityServer(t)
	server.tokenResponse = `{"access_token":"at-2","token_type":"bearer"}`
	client := server.client()

	tokenSet, err := client.Refresh(context.Background(), "rt-1")

	require.NoError(t, err)
	require.False(t, tokenSet.HasRefreshToken())
}

// TestRefresh_Rejected tests a revoked refresh token
func TestRefresh_Rejected(t *testing.T) {
	server := newIdentityServer(t)
	server.tokenStatus = http.StatusBadRequest
	server.tokenResponse = `{"error":"invalid_grant"}`
	client := server.client()

	_, err := client.Refresh(context.Background(), "revoked-rt")

	var exchangeErr *exchange.TokenExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	require.Equal(t, "invalid_grant", exchangeErr.Code)
}

// TestRevoke tests revocation request shape and error mapping
func TestRevoke(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := newIdentityServer(t)
		client := server.client()

		err := client.Revoke(context.Background(), "at-1", "access_token")

		require.NoError(t, err)
		form := server.lastRevokeForm
		require.Equal(t, "at-1", form.Get("token"))
		require.Equal(t, "access_token", form.Get("token_type_hint"))
		require.Equal(t, testClientID, form.Get("client_id"))
	})

	t.Run("no hint", func(t *testing.T) {
		server := newIdentityServer(t)
		client := server.client()

		err := client.Revoke(context.Background(), "at-1", "")

		require.NoError(t, err)
		require.False(t, server.lastRevokeForm.Has("token_type_hint"))
	})

	t.Run("server error", func(t *testing.T) {
		server := newIdentityServer(t)
		server.revokeStatus = http.StatusServiceUnavailable
		client := server.client()

		err := client.Revoke(context.Background(), "at-1", "access_token")

		require.Error(t, err)
	})
}

// TestUserinfo tests the bearer-authenticated claims fetch
func TestUserinfo(t *testing.T) {
	server := newIdentityServer(t)
	client := server.client()

	claims, err := client.Userinfo(context.Background(), "at-1")

	require.NoError(t, err)
	require.Equal(t, "Bearer at-1", server.lastBearer)
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "john.doe@example.com", claims["email"])
}

// TestUserinfo_Unauthorized tests the invalid-token path
func TestUserinfo_Unauthorized(t *testing.T) {
	server := newIdentityServer(t)
	server.userinfoStatus = http.StatusUnauthorized
	client := server.client()

	_, err := client.Userinfo(context.Background(), "stale-token")

	require.Error(t, err)
}

// TestDefaultEndpoints tests the conventional endpoint derivation
func TestDefaultEndpoints(t *testing.T) {
	endpoints := exchange.DefaultEndpoints("https://auth.example.com/")

	require.Equal(t, "https://auth.example.com/oauth/authorize", endpoints.AuthURL)
	require.Equal(t, "https://auth.example.com/oauth/token", endpoints.TokenURL)
	require.Equal(t, "https://auth.example.com/oauth/revoke", endpoints.RevokeURL)
	require.Equal(t, "https://auth.example.com/oauth/userinfo", endpoints.UserinfoURL)
}
