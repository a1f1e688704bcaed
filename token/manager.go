// Package token owns the persisted token lifecycle: it stores each TokenSet
// atomically, tracks access-token expiry, keeps exactly one proactive refresh
// scheduled, and collapses overlapping refreshes into a single underlying
// request.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/exchange"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/storage"
)

// tokenStorageKey is the single storage key owned by the manager. No other
// component writes it.
const tokenStorageKey = "oauth-tokens"

// Exchanger is the slice of the token-endpoint client the manager needs.
type Exchanger interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenSet, error)
	Revoke(ctx context.Context, token, tokenTypeHint string) error
}

// refreshCall is one in-flight refresh; concurrent callers await done and
// share token/err. Single-flight is enforced by retaining this reference, not
// by an external lock.
type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// Manager persists token sets and serves the one supported read path,
// GetAccessToken. Construct with New; a Manager must not be copied.
type Manager struct {
	store           storage.Store
	exchanger       Exchanger
	safetyThreshold time.Duration
	nowFunc         func() time.Time
	logger          zerolog.Logger

	mu            sync.Mutex
	inflight      *refreshCall
	timer         *time.Timer
	nextRefreshAt time.Time

	subMu       sync.Mutex
	subscribers []func(*oauth2.TokenSet)
}

type ManagerOption func(*Manager)

// WithSafetyThreshold sets how long before expiry a token counts as stale and
// the proactive refresh fires.
func WithSafetyThreshold(threshold time.Duration) ManagerOption {
	return func(m *Manager) {
		m.safetyThreshold = threshold
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

func New(store storage.Store, exchanger Exchanger, options ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		exchanger: exchanger,
		logger:    zerolog.Nop(),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.safetyThreshold == 0 {
		m.safetyThreshold = time.Minute
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// Tokens reads the persisted TokenSet; absent is (nil, nil), never an error.
func (m *Manager) Tokens() (*oauth2.TokenSet, error) {
	raw, err := m.store.Get(tokenStorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tokenSet oauth2.TokenSet
	if err := json.Unmarshal([]byte(raw), &tokenSet); err != nil {
		return nil, err
	}
	return &tokenSet, nil
}

// SetTokens atomically replaces the persisted TokenSet, replaces the
// outstanding refresh schedule and notifies subscribers. Every successful
// exchange or refresh lands here.
func (m *Manager) SetTokens(tokenSet *oauth2.TokenSet) error {
	payload, err := json.Marshal(tokenSet)
	if err != nil {
		return err
	}
	if err := m.store.Set(tokenStorageKey, string(payload)); err != nil {
		return err
	}

	m.mu.Lock()
	m.scheduleLocked(tokenSet)
	m.mu.Unlock()

	m.notify(tokenSet)
	return nil
}

// GetAccessToken is the one supported read path. Absent tokens resolve to
// empty. A token outside the safety threshold is returned as-is; a stale or
// expired token with a refresh token triggers (or joins) a single-flight
// refresh; a stale token without one resolves to empty once actually expired.
func (m *Manager) GetAccessToken(ctx context.Context) (string, error) {
	tokenSet, err := m.Tokens()
	if err != nil {
		return "", err
	}
	if tokenSet == nil || tokenSet.AccessToken == "" {
		return "", nil
	}

	now := m.nowFunc()
	expiry, ok := AccessTokenExpiry(tokenSet.AccessToken)
	if ok && now.Before(expiry.Add(-m.safetyThreshold)) {
		return tokenSet.AccessToken, nil
	}

	// An unparsable expiry claim counts as expired from here on.
	if !tokenSet.HasRefreshToken() {
		if ok && now.Before(expiry) {
			// Inside the threshold but still valid, and nothing to refresh with.
			return tokenSet.AccessToken, nil
		}
		return "", nil
	}

	return m.refresh(ctx)
}

// refresh collapses concurrent callers onto one underlying refresh request.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	call.token, call.err = m.doRefresh(ctx)

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()
	close(call.done)

	return call.token, call.err
}

func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	tokenSet, err := m.Tokens()
	if err != nil {
		return "", err
	}
	if tokenSet == nil || !tokenSet.HasRefreshToken() {
		// Cleared while we were queued; nothing to refresh.
		return "", nil
	}

	refreshed, err := m.exchanger.Refresh(ctx, utils.Value(tokenSet.RefreshToken))
	if err != nil {
		var exchangeErr *exchange.TokenExchangeError
		if errors.As(err, &exchangeErr) {
			// The grant itself was rejected (e.g. refresh token revoked
			// server-side); the session cannot recover locally.
			m.clearSession()
		}
		return "", &RefreshFailedError{Err: err}
	}

	// The access token is always replaced; the refresh token only when the
	// server reissued one.
	if !refreshed.HasRefreshToken() {
		refreshed.RefreshToken = tokenSet.RefreshToken
	}

	if err := m.SetTokens(refreshed); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// scheduleLocked replaces the single outstanding refresh schedule. Caller
// holds m.mu.
func (m *Manager) scheduleLocked(tokenSet *oauth2.TokenSet) {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.nextRefreshAt = time.Time{}

	if tokenSet == nil || !tokenSet.HasRefreshToken() {
		return
	}
	expiry, ok := AccessTokenExpiry(tokenSet.AccessToken)
	if !ok {
		// No usable expiry: refresh happens on demand via GetAccessToken
		// instead of from a timer, so an unparsable token cannot cause a
		// refresh loop.
		return
	}

	fireAt := expiry.Add(-m.safetyThreshold)
	delay := fireAt.Sub(m.nowFunc())
	if delay < 0 {
		delay = 0
	}
	m.nextRefreshAt = fireAt
	m.timer = time.AfterFunc(delay, m.scheduledRefresh)
}

// scheduledRefresh runs in the timer goroutine. Its errors are delivered to
// nobody: the session is cleared and subscribers observe the change.
func (m *Manager) scheduledRefresh() {
	if _, err := m.refresh(context.Background()); err != nil {
		m.logger.Warn().Err(err).Msg("scheduled token refresh failed, clearing session")
		m.clearSession()
	}
}

// NextRefreshAt reports the pending proactive refresh, if any.
func (m *Manager) NextRefreshAt() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextRefreshAt, m.timer != nil
}

// OnChange registers a subscriber for authentication-state changes. It is
// invoked with the new TokenSet after every store, and with nil when the
// session is cleared (sign-out or failed background refresh).
func (m *Manager) OnChange(fn func(*oauth2.TokenSet)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Logout cancels the refresh schedule, best-effort revokes the access token
// and clears all persisted flow and token state.
func (m *Manager) Logout(ctx context.Context) error {
	tokenSet, err := m.Tokens()
	if err == nil && tokenSet != nil && tokenSet.AccessToken != "" {
		if revokeErr := m.exchanger.Revoke(ctx, tokenSet.AccessToken, "access_token"); revokeErr != nil {
			m.logger.Warn().Err(revokeErr).Msg("access token revocation failed during logout")
		}
	}

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.nextRefreshAt = time.Time{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return err
	}
	m.notify(nil)
	return nil
}

func (m *Manager) clearSession() {
	_ = m.store.Remove(tokenStorageKey)

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.nextRefreshAt = time.Time{}
	m.mu.Unlock()

	m.notify(nil)
}

func (m *Manager) notify(tokenSet *oauth2.TokenSet) {
	m.subMu.Lock()
	subscribers := make([]func(*oauth2.TokenSet), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.subMu.Unlock()

	for _, fn := range subscribers {
		fn(tokenSet)
	}
}
