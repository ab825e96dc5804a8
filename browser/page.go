// Package browser hides the browser automation library behind a small Page interface, so that
// the scenarios can run on either chromedp or Playwright.
//
// Selectors are CSS selectors, except that a selector starting with "//" is an XPath
// expression. XPath is only needed for finding elements by their text, such as the login
// field that sits inside the container labelled "Email Address".
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/edutask/edutask-e2e-tests/framework"
)

// Element is a snapshot of one element matched by a selector, taken at the time of the query.
type Element struct {
	Text     string   `json:"text"`
	Classes  []string `json:"classes"`
	Value    string   `json:"value"`
	Disabled bool     `json:"disabled"`
	Visible  bool     `json:"visible"`
}

// HasClass reports whether the element's class list contains name.
func (e Element) HasClass(name string) bool {
	for _, c := range e.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Page is one browser tab. All methods block until the browser has carried out the action or
// ctx is done. None of them wait for elements to appear: callers poll with Query before
// interacting with an element.
type Page interface {
	// Navigate loads a URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// Click clicks the index'th element (0-based) matching selector.
	Click(ctx context.Context, selector string, index int) error
	// Type types text into the first element matching selector, after what it already holds.
	Type(ctx context.Context, selector, text string) error
	// Clear empties the first input matching selector.
	Clear(ctx context.Context, selector string) error
	// Submit submits the form containing the first element matching selector.
	Submit(ctx context.Context, selector string) error
	// Query returns a snapshot of every element matching selector, in document order.
	Query(ctx context.Context, selector string) ([]Element, error)
	// HTML returns the current serialized DOM, for failure reports.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Options control how a browser is launched.
type Options struct {
	// Driver is DriverChromedp or DriverPlaywright.
	Driver string
	// Headless launches the browser without a window.
	Headless bool
	// RemoteURL, for chromedp only, is the DevTools websocket URL of an already running browser.
	RemoteURL string
	// Logger receives the automation library's own log output.
	Logger framework.Logger
}

const (
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"
)

var AllDrivers = []string{DriverChromedp, DriverPlaywright}

// Launcher opens pages. One Launcher is created per test run; each scenario group gets its
// own Page. JavaScript console errors and uncaught exceptions on the page are reported to
// the logger given to NewPage.
type Launcher interface {
	NewPage(ctx context.Context, logger framework.Logger) (Page, error)
	Close() error
}

// NewLauncher starts the browser selected by opts.Driver.
func NewLauncher(opts Options) (Launcher, error) {
	switch opts.Driver {
	case "", DriverChromedp:
		return newChromedpLauncher(opts), nil
	case DriverPlaywright:
		return newPlaywrightLauncher(opts)
	default:
		return nil, fmt.Errorf("unknown browser driver %q (valid drivers: %s)", opts.Driver, strings.Join(AllDrivers, ", "))
	}
}

func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "//") || strings.HasPrefix(selector, "(//")
}

func loggerOrNull(l framework.Logger) framework.Logger {
	if l == nil {
		return framework.NullLogger()
	}
	return l
}
