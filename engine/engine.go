package engine

import (
	"context"
	"errors"
	"fmt"
)

// ErrEndOfResults is returned by Session.Next when the engine has no further
// result pages. The walker treats it as a normal stop, not a failure.
var ErrEndOfResults = errors.New("engine: end of results")

// Engine is the interface that all search engine drivers must implement.
type Engine interface {
	// Name returns the engine identifier ("google" or "baidu").
	Name() string

	// Stealth reports whether tabs for this engine need stealth evasions.
	Stealth() bool

	// Open navigates tab to the engine home page, submits the keyword and
	// leaves the tab on the first result page.
	Open(ctx context.Context, tab Tab, keyword string) (Session, error)
}

// Session is an open result listing on one tab.
type Session interface {
	// Entries returns the result entries of the current page in DOM order.
	Entries(ctx context.Context) ([]Entry, error)

	// Next moves to the following result page. It returns ErrEndOfResults
	// when there is none.
	Next(ctx context.Context) error

	// Capture highlights the i-th entry of the last Entries call and returns
	// a full-page PNG screenshot.
	Capture(ctx context.Context, i int) ([]byte, error)
}

// EntryResolver is implemented by sessions whose entry URLs are redirects.
// Walk resolves each entry right before matching it, so links past the
// first match are never followed.
type EntryResolver interface {
	ResolveEntry(ctx context.Context, e Entry) Entry
}

// Tab is the slice of browser behaviour the engines depend on. Operations
// are bound to the context the tab was acquired with.
type Tab interface {
	// Navigate loads url and waits for the page to settle.
	Navigate(url string) error

	// WaitVisible blocks until at least one element matches selector.
	WaitVisible(selector string) error

	// Input types text into the first element matching selector.
	Input(selector, text string) error

	// PressEnter presses Enter on the first element matching selector.
	PressEnter(selector string) error

	// Click clicks the first element matching selector.
	Click(selector string) error

	// HTML returns the rendered document.
	HTML() (string, error)

	// URL returns the current location.
	URL() (string, error)

	// Highlight outlines the ancestor `depth` levels above the index-th
	// element matching selector.
	Highlight(selector string, index, depth int) error

	// Screenshot captures the full page as PNG.
	Screenshot() ([]byte, error)
}

// Entry is a single search-result listing as rendered by the engine.
type Entry struct {
	Title string
	URL   string
}

// New returns the driver registered under name. resolver is used by engines
// whose result links are redirects (Baidu) and may be nil for the others.
func New(name string, resolver Resolver) (Engine, error) {
	switch name {
	case "google":
		return NewGoogle(), nil
	case "baidu":
		if resolver == nil {
			return nil, fmt.Errorf("engine: baidu requires a redirect resolver")
		}
		return NewBaidu(resolver), nil
	default:
		return nil, fmt.Errorf("engine: unknown engine %q", name)
	}
}
