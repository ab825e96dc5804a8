package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/edutask/edutask-e2e-tests/browser"
	"github.com/edutask/edutask-e2e-tests/framework"
	"github.com/edutask/edutask-e2e-tests/todotests"

	"github.com/alessio/shellescape"
)

const (
	defaultBackendURL  = "http://localhost:5000"
	defaultFrontendURL = "http://localhost:3000"
	defaultFixture     = "fixtures/user.json"
	statusQueryTimeout = time.Second * 10
)

type commandParams struct {
	backendURL    string
	frontendURL   string
	fixture       string
	driver        string
	remoteBrowser string
	headless      bool
	waitTimeout   time.Duration
	pollInterval  time.Duration
	settle        time.Duration
	statusTimeout time.Duration
	filters       framework.RegexFilters
	debug         bool
	debugAll      bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.backendURL, "backend-url", defaultBackendURL, "EduTask backend URL")
	fs.StringVar(&c.frontendURL, "frontend-url", defaultFrontendURL, "EduTask frontend URL")
	fs.StringVar(&c.fixture, "fixture", defaultFixture, "user fixture file (JSON or YAML)")
	fs.StringVar(&c.driver, "driver", browser.DriverChromedp,
		"browser automation driver ("+strings.Join(browser.AllDrivers, " or ")+")")
	fs.StringVar(&c.remoteBrowser, "remote-browser", "", "DevTools websocket URL of an already running browser (chromedp only)")
	fs.BoolVar(&c.headless, "headless", true, "run the browser without a window")
	fs.DurationVar(&c.waitTimeout, "wait-timeout", todotests.DefaultWaitTimeout, "timeout for each wait in the UI")
	fs.DurationVar(&c.pollInterval, "poll-interval", framework.DefaultPollInterval, "how often waits check the page")
	fs.DurationVar(&c.settle, "settle", todotests.DefaultSettle, "how long an action must keep changing nothing to count as a no-op")
	fs.DurationVar(&c.statusTimeout, "status-timeout", statusQueryTimeout, "how long to wait for the backend and frontend to respond at startup")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.remoteBrowser != "" && c.driver == browser.DriverPlaywright {
		fmt.Fprintln(os.Stderr, "-remote-browser is only supported with the chromedp driver")
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand returns a command line that runs only the given tests again with the same
// settings.
func (c *commandParams) rerunCommand(program string, failed []framework.TestID) string {
	var b commandBuilder
	b.add(program)
	b.add("-backend-url", c.backendURL, "-frontend-url", c.frontendURL, "-fixture", c.fixture)
	if c.driver != browser.DriverChromedp {
		b.add("-driver", c.driver)
	}
	if c.remoteBrowser != "" {
		b.add("-remote-browser", c.remoteBrowser)
	}
	if !c.headless {
		b.add("-headless=false")
	}
	if c.waitTimeout != todotests.DefaultWaitTimeout {
		b.add("-wait-timeout", c.waitTimeout.String())
	}
	for _, id := range failed {
		b.add("-run", "^"+regexpQuotePath(id)+"$")
	}
	b.add("-debug")
	return b.String()
}

// regexpQuotePath quotes each path element of id, keeping the "/" separators so that the
// pattern can still select the test's parent group.
func regexpQuotePath(id framework.TestID) string {
	parts := make([]string, len(id.Path))
	for i, p := range id.Path {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, "/")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
