package errors

import (
	"errors"
	"fmt"
)

// Session errors shared between the cookie codec and the proxy handlers.
var (
	ErrSessionExpired = errors.New("authorization session expired")
	ErrInvalidSession = errors.New("authorization session invalid")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
