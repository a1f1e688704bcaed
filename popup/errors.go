package popup

import "errors"

var (
	// ErrPopupBlocked indicates the browsing context could not be created,
	// typically because a popup blocker intervened.
	ErrPopupBlocked = errors.New("popup window blocked")

	// ErrUserCancelled indicates the user closed the popup before any
	// callback message arrived.
	ErrUserCancelled = errors.New("authorization cancelled by user")
)
