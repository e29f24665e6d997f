package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by FindOne when no selector matches.
	ErrNotFound = errors.New("element not found")
	// ErrTimeout is returned by WaitFor when the condition is not met in time.
	ErrTimeout = errors.New("timed out waiting for page")
	// ErrClosed is returned by any call on a session after Close.
	ErrClosed = errors.New("session closed")
)

// Session is one open page. Sessions are not shared between goroutines.
type Session interface {
	Navigate(url string) error
	// WaitFor blocks until selector is attached to the document or timeout elapses.
	WaitFor(selector string, timeout time.Duration) error
	// FindOne returns the first element matched by the first selector that matches anything.
	FindOne(selectors ...string) (Element, error)
	ScrollToBottom() error
	Screenshot(path string) error
	Close() error
}

// Element is a handle to one node of the page.
type Element interface {
	// Text is the element's visible text on one line.
	Text() (string, error)
	// RenderedText is the element's text with visual line breaks kept.
	RenderedText() (string, error)
	// Activate fires a click event on the element without moving the pointer.
	Activate() error
}

// Opener creates a fresh Session for every call.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// SessionConfig describes how pages are opened. It is passed by value and
// never changed after a manager is built.
type SessionConfig struct {
	Headless          bool
	UserDataDir       string
	ProfileDirectory  string
	CookiesPath       string
	UserAgent         string
	Stealth           bool
	NavigationTimeout time.Duration
}

// DefaultSessionConfig is a headless session with a 60s navigation timeout
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Headless:          true,
		NavigationTimeout: 60 * time.Second,
	}
}
