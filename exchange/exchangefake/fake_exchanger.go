// Package exchangefake provides an in-memory stand-in for the token exchange
// client, with call counting for asserting how often the network would have
// been hit.
package exchangefake

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/oauth2"
)

// FakeExchanger implements the exchange surface consumed by the token
// lifecycle manager and the auth client. Configure the result fields before
// use; all methods are safe for concurrent callers.
type FakeExchanger struct {
	mu sync.Mutex

	// ExchangeResult / ExchangeErr drive ExchangeCode.
	ExchangeResult *oauth2.TokenSet
	ExchangeErr    error

	// RefreshResult / RefreshErr drive Refresh. RefreshDelay, when set, makes
	// the call block so tests can overlap concurrent refreshes.
	RefreshResult *oauth2.TokenSet
	RefreshErr    error
	RefreshDelay  time.Duration

	// RevokeErr drives Revoke.
	RevokeErr error

	exchangeCalls int
	refreshCalls  int
	revokeCalls   int
	revokedTokens []string
}

func (f *FakeExchanger) ExchangeCode(ctx context.Context, code, verifier, redirectURI string) (*oauth2.TokenSet, error) {
	f.mu.Lock()
	f.exchangeCalls++
	result, err := f.ExchangeResult, f.ExchangeErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return copyTokenSet(result), nil
}

func (f *FakeExchanger) Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenSet, error) {
	f.mu.Lock()
	f.refreshCalls++
	result, err, delay := f.RefreshResult, f.RefreshErr, f.RefreshDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return copyTokenSet(result), nil
}

func (f *FakeExchanger) Revoke(ctx context.Context, token, tokenTypeHint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeCalls++
	f.revokedTokens = append(f.revokedTokens, token)
	return f.RevokeErr
}

func (f *FakeExchanger) ExchangeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchangeCalls
}

func (f *FakeExchanger) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func (f *FakeExchanger) RevokeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revokeCalls
}

func (f *FakeExchanger) RevokedTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.revokedTokens...)
}

func copyTokenSet(ts *oauth2.TokenSet) *oauth2.TokenSet {
	if ts == nil {
		return nil
	}
	clone := *ts
	return &clone
}
