package token

import "fmt"

// RefreshFailedError indicates the refresh_token grant was rejected or could
// not complete. When the rejection came from the server, the local session
// has already been cleared: a revoked refresh token cannot recover.
type RefreshFailedError struct {
	Err error
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshFailedError) Unwrap() error { return e.Err }
