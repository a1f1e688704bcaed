// Package exchange implements the client side of the OAuth2 token endpoint
// contract: authorization_code and refresh_token grants, revocation, and the
// bearer-authenticated userinfo passthrough.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/oauth2"
)

const defaultRequestTimeout = 30 * time.Second

// Client performs token-endpoint requests against one identity server.
// The zero value is not usable; construct with New.
type Client struct {
	endpoints    Endpoints
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

type ClientOption func(*Client)

// WithClientSecret marks the client as confidential; the secret is added to
// every grant and revocation request. Never set this in an untrusted context.
func WithClientSecret(secret string) ClientOption {
	return func(c *Client) {
		c.clientSecret = secret
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(endpoints Endpoints, clientID string, options ...ClientOption) *Client {
	c := &Client{
		endpoints: endpoints,
		clientID:  clientID,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return c
}

// ExchangeCode submits an authorization_code grant. The verifier must be the
// PKCE verifier whose challenge started the flow; the redirect URI must
// repeat the one used on the authorization request.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier, redirectURI string) (*oauth2.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", string(oauth2.AuthorizationCodeGrant))
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", c.clientID)
	form.Set("code_verifier", verifier)
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}
	return c.postTokenForm(ctx, form)
}

// Refresh submits a refresh_token grant. The returned set always carries a
// new access token; it carries a refresh token only when the server rotated
// it, so callers must fall back to the old one when absent.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", string(oauth2.RefreshTokenCodeGrant))
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}
	return c.postTokenForm(ctx, form)
}

// Revoke submits a token to the revocation endpoint. Best-effort for local
// sign-out, but errors are surfaced for callers that need confirmation.
func (c *Client) Revoke(ctx context.Context, token, tokenTypeHint string) error {
	form := url.Values{}
	form.Set("token", token)
	form.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}
	if tokenTypeHint != "" {
		form.Set("token_type_hint", tokenTypeHint)
	}

	status, body, err := c.postForm(ctx, c.endpoints.RevokeURL, form)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		return nil
	}
	return errorFromBody(status, body)
}

// Userinfo fetches the userinfo endpoint with the given bearer token and
// returns the raw claims.
func (c *Client) Userinfo(ctx context.Context, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.UserinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange.Userinfo new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromBody(resp.StatusCode, body)
	}

	var claims map[string]any
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, &MalformedResponseError{Status: resp.StatusCode, Err: err}
	}
	return claims, nil
}

// postTokenForm posts a grant request and decodes the token response.
func (c *Client) postTokenForm(ctx context.Context, form url.Values) (*oauth2.TokenSet, error) {
	status, body, err := c.postForm(ctx, c.endpoints.TokenURL, form)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, errorFromBody(status, body)
	}

	var tokenSet oauth2.TokenSet
	if err := json.Unmarshal(body, &tokenSet); err != nil {
		return nil, &MalformedResponseError{Status: status, Err: err}
	}
	if tokenSet.AccessToken == "" {
		return nil, &MalformedResponseError{Status: status, Err: errors.New("response missing access_token")}
	}
	return &tokenSet, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("exchange.postForm new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, &NetworkError{Err: err}
	}
	return resp.StatusCode, body, nil
}

// errorFromBody maps a non-success response to a typed failure, preferring
// the server's own {error, error_description} shape.
func errorFromBody(status int, body []byte) error {
	var errResp oauth2.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &TokenExchangeError{
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Status:      status,
		}
	}
	return &MalformedResponseError{Status: status, Err: fmt.Errorf("unexpected response body %q", truncate(body, 200))}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
