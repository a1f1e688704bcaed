package server

// Route path constants
// All proxy routes are defined here to ensure consistency and prevent typos
const (
	// Flow routes
	RouteAuthorizeStart    = "/authorize-start"
	RouteAuthorizeCallback = "/authorize-callback"

	// Passthrough / operational routes
	RouteUserinfo = "/userinfo"
	RouteHealth   = "/health"
)

// Inline error-page codes rendered by the proxy.
const (
	ErrorCodeUnsupportedDomain = "UNSUPPORTED_DOMAIN"
	ErrorCodeSessionExpired    = "SESSION_EXPIRED"
	ErrorCodeInvalidSession    = "INVALID_SESSION"
	ErrorCodeCsrfDetected      = "CSRF_DETECTED"
	ErrorCodeExchangeFailed    = "EXCHANGE_FAILED"
	ErrorCodeNetworkError      = "NETWORK_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
