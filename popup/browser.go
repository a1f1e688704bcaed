package popup

// Viewport describes the caller's visible area, used to centre the popup.
type Viewport struct {
	Width  int
	Height int
}

// Features is the geometry requested for a new browsing context.
type Features struct {
	Width  int
	Height int
	Left   int
	Top    int
}

const (
	defaultPopupWidth  = 500
	defaultPopupHeight = 640
)

// CenteredFeatures computes popup geometry centred within the viewport. Pure.
func CenteredFeatures(viewport Viewport) Features {
	f := Features{Width: defaultPopupWidth, Height: defaultPopupHeight}
	f.Left = (viewport.Width - f.Width) / 2
	f.Top = (viewport.Height - f.Height) / 2
	if f.Left < 0 {
		f.Left = 0
	}
	if f.Top < 0 {
		f.Top = 0
	}
	return f
}

// Browser opens new browsing contexts. An Open that is blocked returns an
// error or a nil Window.
type Browser interface {
	Open(url string, features Features) (Window, error)
}

// Window is a handle on an opened browsing context.
type Window interface {
	// Closed reports whether the user has closed the context.
	Closed() bool
	// Close closes the context; closing an already-closed window is a no-op.
	Close()
}
