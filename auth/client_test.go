package auth_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/exchange"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/jrsteele09/go-auth-client/token"
)

const (
	testClientID    = "test-client-1"
	testRedirectURI = "http://localhost:3000/callback"
)

// fakeTransport scripts the authorization round trip: respond receives the
// per-attempt flow state and produces the callback result.
type fakeTransport struct {
	respond func(flowState oauthmodel.FlowState, authURL string) (oauthmodel.CallbackResult, error)

	gotFlowState oauthmodel.FlowState
	gotAuthURL   string
	calls        int
}

func (t *fakeTransport) Await(ctx context.Context, flowState oauthmodel.FlowState, authURL string) (oauthmodel.CallbackResult, error) {
	t.calls++
	t.gotFlowState = flowState
	t.gotAuthURL = authURL
	return t.respond(flowState, authURL)
}

// echoCode scripts the normal success callback: the server echoes the state
// and hands back a code.
func echoCode(code string) func(oauthmodel.FlowState, string) (oauthmodel.CallbackResult, error) {
	return func(flowState oauthmodel.FlowState, _ string) (oauthmodel.CallbackResult, error) {
		return oauthmodel.CallbackResult{Code: code, State: flowState.State}, nil
	}
}

// clientFixture wires a full client against a scripted identity server.
type clientFixture struct {
	transport *fakeTransport
	store     *storage.InMemoryStore
	manager   *token.Manager
	client    *auth.Client

	upstream      *httptest.Server
	accessToken   string
	tokenStatus   int
	tokenResponse string
	tokenCalls    int
	lastTokenForm url.Values
	revokeCalls   int
}

func setupClient(t *testing.T, config *auth.Config) *clientFixture {
	t.Helper()

	f := &clientFixture{
		transport:   &fakeTransport{respond: echoCode("auth-code-1")},
		store:       storage.NewInMemoryStore(),
		tokenStatus: http.StatusOK,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": float64(time.Now().Add(time.Hour).Unix()),
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	f.accessToken = accessToken
	f.tokenResponse = `{"access_token":"` + accessToken + `","refresh_token":"rt-1","token_type":"bearer","expires_in":3600}`

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.lastTokenForm = r.PostForm
		f.tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenResponse))
	})
	mux.HandleFunc("POST /oauth/revoke", func(w http.ResponseWriter, r *http.Request) {
		f.revokeCalls++
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /oauth/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"user-1","email":"john.doe@example.com"}`))
	})
	f.upstream = httptest.NewServer(mux)
	t.Cleanup(f.upstream.Close)

	if config == nil {
		config = &auth.Config{
			ServerBaseURL: f.upstream.URL,
			ClientID:      testClientID,
			RedirectURI:   testRedirectURI,
			Scopes:        []string{"openid", "profile", "email"},
		}
	} else if config.ServerBaseURL == "" {
		config.ServerBaseURL = f.upstream.URL
	}

	exchanger := exchange.New(exchange.DefaultEndpoints(f.upstream.URL), testClientID)
	f.manager = token.New(f.store, exchanger)

	client, err := auth.New(*config, auth.Deps{
		Transport: f.transport,
		Exchanger: exchanger,
		Tokens:    f.manager,
	})
	require.NoError(t, err)
	f.client = client
	return f
}

// TestNew_Validation tests construction guards
func TestNew_Validation(t *testing.T) {
	validConfig := auth.Config{
		ServerBaseURL: "https://auth.example.com",
		ClientID:      testClientID,
		RedirectURI:   testRedirectURI,
	}
	transport := &fakeTransport{respond: echoCode("auth-code-1")}
	exchanger := exchange.New(exchange.DefaultEndpoints("https://auth.example.com"), testClientID)
	manager := token.New(storage.NewInMemoryStore(), exchanger)
	deps := auth.Deps{Transport: transport, Exchanger: exchanger, Tokens: manager}

	tests := []struct {
		name   string
		config auth.Config
		deps   auth.Deps
	}{
		{name: "missing client id", config: auth.Config{ServerBaseURL: "https://auth.example.com", RedirectURI: testRedirectURI}, deps: deps},
		{name: "missing redirect uri", config: auth.Config{ServerBaseURL: "https://auth.example.com", ClientID: testClientID}, deps: deps},
		{name: "malformed server url", config: auth.Config{ServerBaseURL: "not-a-url", ClientID: testClientID, RedirectURI: testRedirectURI}, deps: deps},
		{name: "missing transport", config: validConfig, deps: auth.Deps{Exchanger: exchanger, Tokens: manager}},
		{name: "missing exchanger", config: validConfig, deps: auth.Deps{Transport: transport, Tokens: manager}},
		{name: "missing token manager", config: validConfig, deps: auth.Deps{Transport: transport, Exchanger: exchanger}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.New(tt.config, tt.deps)
			require.ErrorIs(t, err, auth.ErrConfiguration)
		})
	}
}

// TestAuthorize_Success tests the full attempt: secrets, URL, transport,
// exchange, persistence
func TestAuthorize_Success(t *testing.T) {
	f := setupClient(t, nil)

	require.NoError(t, f.client.Authorize(context.Background()))

	// The transport saw a complete authorization URL.
	authURL, err := url.Parse(f.transport.gotAuthURL)
	require.NoError(t, err)
	q := authURL.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, "openid profile email", q.Get("scope"))
	require.Equal(t, f.transport.gotFlowState.State, q.Get("state"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))

	// The exchanged verifier is the preimage of the challenge in the URL.
	require.Equal(t, 1, f.tokenCalls)
	verifier := f.lastTokenForm.Get("code_verifier")
	sum := sha256.Sum256([]byte(verifier))
	require.Equal(t, q.Get("code_challenge"), base64.RawURLEncoding.EncodeToString(sum[:]))
	require.Equal(t, "auth-code-1", f.lastTokenForm.Get("code"))
	require.Equal(t, testRedirectURI, f.lastTokenForm.Get("redirect_uri"))

	// The token set landed in the manager.
	accessToken, err := f.client.GetAccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, f.accessToken, accessToken)
}

// TestAuthorize_Nonce tests that UseNonce adds a nonce to the request
func TestAuthorize_Nonce(t *testing.T) {
	f := setupClient(t, &auth.Config{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		UseNonce:    true,
	})

	require.NoError(t, f.client.Authorize(context.Background()))

	authURL, err := url.Parse(f.transport.gotAuthURL)
	require.NoError(t, err)
	require.NotEmpty(t, authURL.Query().Get("nonce"))
}

// TestAuthorize_StateMismatch tests that a transport result carrying the
// wrong state never reaches the token endpoint
func TestAuthorize_StateMismatch(t *testing.T) {
	f := setupClient(t, nil)
	f.transport.respond = func(oauthmodel.FlowState, string) (oauthmodel.CallbackResult, error) {
		return oauthmodel.CallbackResult{Code: "attacker-code", State: "forged-state"}, nil
	}

	err := f.client.Authorize(context.Background())

	require.ErrorIs(t, err, oauthmodel.ErrCsrfDetected)
	require.Zero(t, f.tokenCalls)

	stored, err := f.manager.Tokens()
	require.NoError(t, err)
	require.Nil(t, stored)
}

// TestAuthorize_TransportErrorPassthrough tests that transport failures come
// back typed and untouched
func TestAuthorize_TransportErrorPassthrough(t *testing.T) {
	f := setupClient(t, nil)
	denied := &oauthmodel.AuthorizationDeniedError{Code: "access_denied"}
	f.transport.respond = func(oauthmodel.FlowState, string) (oauthmodel.CallbackResult, error) {
		return oauthmodel.CallbackResult{}, denied
	}

	err := f.client.Authorize(context.Background())

	var got *oauthmodel.AuthorizationDeniedError
	require.ErrorAs(t, err, &got)
	require.Equal(t, "access_denied", got.Code)
	require.Zero(t, f.tokenCalls)
}

// TestAuthorize_ProxyCompleted tests a transport that already exchanged the
// code server-side and delivered tokens in the result
func TestAuthorize_ProxyCompleted(t *testing.T) {
	f := setupClient(t, nil)
	f.transport.respond = func(flowState oauthmodel.FlowState, _ string) (oauthmodel.CallbackResult, error) {
		return oauthmodel.CallbackResult{
			State: flowState.State,
			Token: &oauth2.TokenSet{AccessToken: f.accessToken, TokenType: "bearer"},
		}, nil
	}

	require.NoError(t, f.client.Authorize(context.Background()))

	require.Zero(t, f.tokenCalls, "no client-side exchange for a proxy-completed flow")

	stored, err := f.manager.Tokens()
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, f.accessToken, stored.AccessToken)
}

// TestAuthorize_ConcurrentJoinsInflightAttempt tests that a second concurrent
// call shares the running attempt's outcome instead of starting its own
func TestAuthorize_ConcurrentJoinsInflightAttempt(t *testing.T) {
	f := setupClient(t, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.transport.respond = func(flowState oauthmodel.FlowState, _ string) (oauthmodel.CallbackResult, error) {
		close(entered)
		<-release
		return oauthmodel.CallbackResult{Code: "auth-code-1", State: flowState.State}, nil
	}

	results := make(chan error, 2)
	go func() { results <- f.client.Authorize(context.Background()) }()
	<-entered
	go func() { results <- f.client.Authorize(context.Background()) }()
	time.Sleep(20 * time.Millisecond) // let the second call join the attempt
	close(release)

	require.NoError(t, <-results)
	require.NoError(t, <-results)
	require.Equal(t, 1, f.transport.calls, "only one round trip opens")
	require.Equal(t, 1, f.tokenCalls, "only one exchange")

	accessToken, err := f.client.GetAccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, f.accessToken, accessToken)
}

// TestAuthorize_ExchangeFailure tests a rejected code
func TestAuthorize_ExchangeFailure(t *testing.T) {
	f := setupClient(t, nil)
	f.tokenStatus = http.StatusBadRequest
	f.tokenResponse = `{"error":"invalid_grant","error_description":"code expired"}`

	err := f.client.Authorize(context.Background())

	var exchangeErr *exchange.TokenExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	require.Equal(t, "invalid_grant", exchangeErr.Code)

	stored, err := f.manager.Tokens()
	require.NoError(t, err)
	require.Nil(t, stored)
}

// TestUserinfo tests the authenticated claims fetch and the signed-out guard
func TestUserinfo(t *testing.T) {
	f := setupClient(t, nil)

	_, err := f.client.Userinfo(context.Background())
	require.Error(t, err, "signed out")

	require.NoError(t, f.client.Authorize(context.Background()))

	claims, err := f.client.Userinfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user-1", claims["sub"])
}

// TestLogout tests sign-out end to end: revocation plus cleared state
func TestLogout(t *testing.T) {
	f := setupClient(t, nil)
	require.NoError(t, f.client.Authorize(context.Background()))

	require.NoError(t, f.client.Logout(context.Background()))

	require.Equal(t, 1, f.revokeCalls)

	accessToken, err := f.client.GetAccessToken(context.Background())
	require.NoError(t, err)
	require.Empty(t, accessToken)
}
