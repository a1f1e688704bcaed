// Package popup implements the in-browser handoff transport: it opens a new
// browsing context at the authorization URL, listens for exactly one callback
// message from it, and polls for the user closing the window.
package popup

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
)

// Phase is the coordinator's position in the handoff state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOpening
	PhaseAwaitingResult
	PhaseResolved
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseOpening:
		return "OPENING"
	case PhaseAwaitingResult:
		return "AWAITING_RESULT"
	case PhaseResolved:
		return "RESOLVED"
	case PhaseRejected:
		return "REJECTED"
	}
	return "UNKNOWN"
}

const defaultPollInterval = 500 * time.Millisecond

// attempt is one in-flight handoff; a second Await while one is active joins
// it and shares the result rather than opening a second popup.
type attempt struct {
	done   chan struct{}
	result oauthmodel.CallbackResult
	err    error
}

// Coordinator runs popup handoffs. Safe for concurrent use; at most one
// popup is ever open per Coordinator.
type Coordinator struct {
	browser      Browser
	source       MessageSource
	viewport     Viewport
	pollInterval time.Duration

	mu       sync.Mutex
	inflight *attempt
	phase    Phase
}

type CoordinatorOption func(*Coordinator)

// WithPollInterval overrides the closure-poll interval (default 500ms).
func WithPollInterval(interval time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.pollInterval = interval
	}
}

// WithViewport sets the caller's viewport used for popup centring.
func WithViewport(viewport Viewport) CoordinatorOption {
	return func(c *Coordinator) {
		c.viewport = viewport
	}
}

func New(browser Browser, source MessageSource, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		browser:  browser,
		source:   source,
		viewport: Viewport{Width: 1280, Height: 800},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.pollInterval == 0 {
		c.pollInterval = defaultPollInterval
	}
	return c
}

// Phase reports the state machine position of the current or last attempt.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Await opens the authorization URL in a popup and blocks until exactly one
// callback result arrives, the user closes the popup, or ctx is cancelled.
// A call made while another attempt is awaiting its result joins that attempt
// and shares its outcome.
//
// A result whose state token differs from flowState's is rejected as CSRF
// before anything else happens; a mismatched callback never reaches the
// token endpoint.
func (c *Coordinator) Await(ctx context.Context, flowState oauthmodel.FlowState, authURL string) (oauthmodel.CallbackResult, error) {
	c.mu.Lock()
	if current := c.inflight; current != nil {
		c.mu.Unlock()
		select {
		case <-current.done:
			return current.result, current.err
		case <-ctx.Done():
			return oauthmodel.CallbackResult{}, ctx.Err()
		}
	}
	current := &attempt{done: make(chan struct{})}
	c.inflight = current
	c.phase = PhaseOpening
	c.mu.Unlock()

	current.result, current.err = c.run(ctx, flowState, authURL)

	c.mu.Lock()
	c.inflight = nil
	if current.err != nil {
		c.phase = PhaseRejected
	} else {
		c.phase = PhaseResolved
	}
	c.mu.Unlock()
	close(current.done)

	return current.result, current.err
}

func (c *Coordinator) run(ctx context.Context, flowState oauthmodel.FlowState, authURL string) (oauthmodel.CallbackResult, error) {
	window, err := c.browser.Open(authURL, CenteredFeatures(c.viewport))
	if err != nil || window == nil {
		return oauthmodel.CallbackResult{}, ErrPopupBlocked
	}

	c.mu.Lock()
	c.phase = PhaseAwaitingResult
	c.mu.Unlock()

	messages, cancelSubscription := c.source.Subscribe()
	ticker := time.NewTicker(c.pollInterval)

	// Cleanup must run exactly once on every exit path: drop the listener,
	// stop the poller, close the popup if still open.
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			cancelSubscription()
			ticker.Stop()
			if !window.Closed() {
				window.Close()
			}
		})
	}
	defer cleanup()

	for {
		select {
		case message := <-messages:
			result, err := oauthmodel.ParseCallbackMessage(message.Data)
			if err != nil {
				// Not a callback (or garbage); keep waiting for the real one.
				continue
			}
			if result.State != flowState.State {
				return oauthmodel.CallbackResult{}, oauthmodel.ErrCsrfDetected
			}
			if denied := result.Denied(); denied != nil {
				return oauthmodel.CallbackResult{}, denied
			}
			if !result.Succeeded() {
				return oauthmodel.CallbackResult{}, oauthmodel.ErrMalformedCallbackMessage
			}
			return result, nil

		case <-ticker.C:
			if window.Closed() {
				return oauthmodel.CallbackResult{}, ErrUserCancelled
			}

		case <-ctx.Done():
			return oauthmodel.CallbackResult{}, ctx.Err()
		}
	}
}
