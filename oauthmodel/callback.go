package oauthmodel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-auth-client/oauth2"
)

// CallbackMessageType is the discriminator of the structured window-message
// result shape.
const CallbackMessageType = "oauth_callback"

// legacyMessagePrefix starts the legacy string result shape:
// "authorization:<provider>:<state>:<json-serialized-payload>".
const legacyMessagePrefix = "authorization:"

// CallbackResult is the single internal shape every transport reduces its
// callback to, whatever the wire format was. It is transient: consumed
// exactly once and never persisted.
//
// Either Code (success) or Error (server-reported failure) is set. Token is
// only populated by proxy-completed flows, where the exchange already
// happened server-side and the opener receives tokens instead of a code.
type CallbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
	Token            *oauth2.TokenSet
}

// Succeeded reports whether the result carries something exchangeable (or an
// already-exchanged token set) rather than a server error.
func (r CallbackResult) Succeeded() bool {
	return r.Error == "" && (r.Code != "" || r.Token != nil)
}

// Denied returns the server-reported OAuth error, or nil for a success result.
func (r CallbackResult) Denied() *AuthorizationDeniedError {
	if r.Error == "" {
		return nil
	}
	return &AuthorizationDeniedError{Code: r.Error, Description: r.ErrorDescription}
}

// CallbackMessage is the structured window-message result shape posted by a
// callback page to its opener.
type CallbackMessage struct {
	Type             string           `json:"type"`
	Code             string           `json:"code,omitempty"`
	State            string           `json:"state,omitempty"`
	Error            string           `json:"error,omitempty"`
	ErrorDescription string           `json:"error_description,omitempty"`
	Token            *oauth2.TokenSet `json:"token,omitempty"`
}

// legacyPayload is the JSON tail of the legacy string shape.
type legacyPayload struct {
	Code             string           `json:"code,omitempty"`
	Error            string           `json:"error,omitempty"`
	ErrorDescription string           `json:"error_description,omitempty"`
	Token            *oauth2.TokenSet `json:"token,omitempty"`
}

// ParseCallbackMessage normalizes a raw window-message payload into a
// CallbackResult. Both supported shapes are accepted:
//
//   - the structured JSON object {type:"oauth_callback", code?, state?, ...}
//   - the legacy string "authorization:<provider>:<state>:<json payload>"
//
// Messages that are neither shape return ErrNotCallbackMessage so listeners
// can ignore them and keep waiting. Message origin is treated as
// informational only; authenticity rests on the state-token comparison the
// caller performs afterwards.
func ParseCallbackMessage(raw []byte) (CallbackResult, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return CallbackResult{}, ErrNotCallbackMessage
	}

	// Legacy shape arrives either as a bare string or as a JSON-quoted string.
	if strings.HasPrefix(text, `"`) {
		var quoted string
		if err := json.Unmarshal([]byte(text), &quoted); err == nil && strings.HasPrefix(quoted, legacyMessagePrefix) {
			text = quoted
		}
	}
	if strings.HasPrefix(text, legacyMessagePrefix) {
		return parseLegacyMessage(text)
	}

	if !strings.HasPrefix(text, "{") {
		return CallbackResult{}, ErrNotCallbackMessage
	}

	var msg CallbackMessage
	if err := json.Unmarshal([]byte(text), &msg); err != nil {
		return CallbackResult{}, fmt.Errorf("%w: %w", ErrMalformedCallbackMessage, err)
	}
	if msg.Type != CallbackMessageType {
		return CallbackResult{}, ErrNotCallbackMessage
	}

	return CallbackResult{
		Code:             msg.Code,
		State:            msg.State,
		Error:            msg.Error,
		ErrorDescription: msg.ErrorDescription,
		Token:            msg.Token,
	}, nil
}

func parseLegacyMessage(text string) (CallbackResult, error) {
	// authorization:<provider>:<state>:<json payload>
	parts := strings.SplitN(text, ":", 4)
	if len(parts) != 4 {
		return CallbackResult{}, ErrMalformedCallbackMessage
	}

	var payload legacyPayload
	if err := json.Unmarshal([]byte(parts[3]), &payload); err != nil {
		return CallbackResult{}, fmt.Errorf("%w: %w", ErrMalformedCallbackMessage, err)
	}

	return CallbackResult{
		Code:             payload.Code,
		State:            parts[2],
		Error:            payload.Error,
		ErrorDescription: payload.ErrorDescription,
		Token:            payload.Token,
	}, nil
}

// FormatLegacyMessage renders the legacy string result shape for a provider,
// state and JSON-serializable payload.
func FormatLegacyMessage(provider, state string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("oauthmodel.FormatLegacyMessage marshal: %w", err)
	}
	return fmt.Sprintf("%s%s:%s:%s", legacyMessagePrefix, provider, state, body), nil
}
