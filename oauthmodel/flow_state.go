package oauthmodel

import "time"

// DefaultFlowStateTTL bounds the lifetime of an authorization attempt. A flow
// state older than this is discarded whether or not a callback arrives.
const DefaultFlowStateTTL = 10 * time.Minute

// FlowState is the transient state of a single authorization attempt, owned
// exclusively by the initiator: held in memory by the popup transport, or
// sealed into a short-lived cookie by the edge redirect proxy. At most one
// flow state is in flight per initiator; it is discarded on success, failure
// or expiry.
type FlowState struct {
	// State is the random correlation token sent on the authorization request
	// and echoed back by the server.
	State string `json:"state"`

	// Verifier is the PKCE code verifier. It never leaves the initiating
	// context except inside the token exchange request body.
	Verifier string `json:"verifier"`

	// RedirectURI is the callback URI this attempt was started with; repeated
	// verbatim in the exchange request.
	RedirectURI string `json:"redirect_uri"`

	// CreatedAt is when the attempt started.
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the flow state has outlived ttl as of now.
func (f FlowState) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(f.CreatedAt) > ttl
}
