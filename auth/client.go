// Package auth ties the protocol engine together: it generates the
// per-attempt secrets, builds the authorization URL, hands the round trip to
// a transport, validates the returned callback and exchanges the code, and
// delegates the stored token lifecycle to the token manager.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/exchange"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/pkce"
	"github.com/jrsteele09/go-auth-client/token"
)

// Transport carries one authorization round trip to completion: popup
// handoff, redirect proxy, or anything else that can produce a single
// CallbackResult for a flow.
type Transport interface {
	Await(ctx context.Context, flowState oauthmodel.FlowState, authURL string) (oauthmodel.CallbackResult, error)
}

// Config is the static configuration of one client instance.
type Config struct {
	// ServerBaseURL is the identity server, e.g. "https://auth.example.com".
	ServerBaseURL string

	// ClientID is the registered OAuth client id.
	ClientID string

	// RedirectURI is the pre-registered callback the transport terminates at.
	RedirectURI string

	// Scopes are requested on every authorization; space-joined on the wire.
	Scopes []string

	// UseNonce adds a random nonce to each authorization request, bound into
	// the ID token by OIDC servers.
	UseNonce bool
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("%w: client id is required", ErrConfiguration)
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return fmt.Errorf("%w: redirect uri is required", ErrConfiguration)
	}
	if _, err := (oauthmodel.AuthorizationParameters{ServerBaseURL: c.ServerBaseURL}).AuthorizeURL(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// Deps are the collaborators a Client is constructed from. All are injected:
// the client keeps no package-level state, so multiple instances can coexist
// (e.g. under test).
type Deps struct {
	Transport Transport
	Exchanger *exchange.Client
	Tokens    *token.Manager
}

// authorizeCall is one in-flight authorization attempt; concurrent Authorize
// callers await done and share err.
type authorizeCall struct {
	done chan struct{}
	err  error
}

// Client is one configured OAuth client instance.
type Client struct {
	config    Config
	transport Transport
	exchanger *exchange.Client
	tokens    *token.Manager
	nowFunc   func() time.Time

	mu       sync.Mutex
	inflight *authorizeCall
}

type ClientOption func(*Client)

func WithNowFunc(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowFunc = now
	}
}

func New(config Config, deps Deps, options ...ClientOption) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if deps.Transport == nil || deps.Exchanger == nil || deps.Tokens == nil {
		return nil, fmt.Errorf("%w: transport, exchanger and token manager are required", ErrConfiguration)
	}

	c := &Client{
		config:    config,
		transport: deps.Transport,
		exchanger: deps.Exchanger,
		tokens:    deps.Tokens,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c, nil
}

// Authorize runs one full authorization attempt: PKCE + state generation,
// URL construction, the transport round trip, callback validation, and the
// code-for-token exchange. On success the resulting TokenSet is persisted
// and its proactive refresh scheduled.
//
// The state-token check always precedes the exchange: a mismatched or
// replayed callback never reaches the token endpoint. Protocol failures come
// back as the typed errors of the transport and exchange packages.
//
// At most one attempt is in flight per Client: a concurrent Authorize joins
// the running attempt and shares its outcome rather than opening a second
// round trip.
func (c *Client) Authorize(ctx context.Context) error {
	c.mu.Lock()
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &authorizeCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	call.err = c.authorize(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(call.done)

	return call.err
}

func (c *Client) authorize(ctx context.Context) error {
	challenge := pkce.Generate()
	flowState := oauthmodel.FlowState{
		State:       pkce.State(),
		Verifier:    challenge.Verifier,
		RedirectURI: c.config.RedirectURI,
		CreatedAt:   c.nowFunc(),
	}

	params := oauthmodel.AuthorizationParameters{
		ServerBaseURL: c.config.ServerBaseURL,
		ClientID:      c.config.ClientID,
		RedirectURI:   flowState.RedirectURI,
		Scopes:        c.config.Scopes,
		State:         flowState.State,
		CodeChallenge: challenge.Challenge,
	}
	if c.config.UseNonce {
		params.Nonce = pkce.State()
	}
	authURL, err := params.AuthorizeURL()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	result, err := c.transport.Await(ctx, flowState, authURL)
	if err != nil {
		return err
	}
	if result.State != flowState.State {
		return oauthmodel.ErrCsrfDetected
	}

	// A proxy-completed flow already exchanged the code server-side and
	// delivered tokens directly.
	if result.Token != nil {
		return c.tokens.SetTokens(result.Token)
	}

	tokenSet, err := c.exchanger.ExchangeCode(ctx, result.Code, flowState.Verifier, flowState.RedirectURI)
	if err != nil {
		return err
	}
	return c.tokens.SetTokens(tokenSet)
}

// GetAccessToken returns a live access token, refreshing if needed; empty
// when signed out.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	return c.tokens.GetAccessToken(ctx)
}

// Userinfo fetches the userinfo claims for the current session.
func (c *Client) Userinfo(ctx context.Context) (map[string]any, error) {
	accessToken, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, fmt.Errorf("not authenticated")
	}
	return c.exchanger.Userinfo(ctx, accessToken)
}

// Logout cancels the refresh schedule, best-effort revokes the access token
// and clears persisted state.
func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.Logout(ctx)
}
