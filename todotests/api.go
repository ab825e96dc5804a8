package todotests

import (
	"context"
	"sync"
	"time"

	"github.com/edutask/edutask-e2e-tests/browser"
	"github.com/edutask/edutask-e2e-tests/edutask"
	"github.com/edutask/edutask-e2e-tests/framework"

	"github.com/stretchr/testify/require"
)

const (
	snapshotTimeout = time.Second * 5
	cleanupTimeout  = time.Second * 10
)

type environment struct {
	ctx      context.Context
	client   *edutask.Client
	launcher browser.Launcher
	fixture  edutask.Fixture
	config   Config
}

// group is what a scenario group sets up once for all of its scenarios: the seeded user and
// task, and the browser page.
type group struct {
	seed    Seed
	page    browser.Page
	console *consoleRouter
}

// T represents a test or subtest in the EduTask test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner, and with some extra features such as debug logging that are
// provided by the lower-level framework package.
//
// A scenario group calls SetUpGroup first; its subtests then share the group's seeded data and
// browser page. To make test assertions, use the assert and require packages, passing the *T
// as if it were a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
	group   *group
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
//
// Inside a scenario group, browser console errors are logged to the subtest while it runs, and
// if the subtest fails its debug output gets a snapshot of the page.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		t1 := &T{context: c, env: t.env, group: t.group}
		if t.group != nil {
			c.Defer(t.group.console.routeTo(c.DebugLogger()))
			c.OnFailure(t1.snapshotPage)
		}
		action(t1)
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer schedules a cleanup action for the end of this test.
func (t *T) Defer(action func()) {
	t.context.Defer(action)
}

func (t *T) ctx() context.Context {
	return t.env.ctx
}

// detachedContext is not cancelled when the run is interrupted, so that cleanup and failure
// reports still reach the backend and the browser.
func (t *T) detachedContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(t.ctx()), timeout)
}

// Seed returns the data seeded for the current scenario group.
func (t *T) Seed() Seed {
	t.requireGroup()
	return t.group.seed
}

// Session returns a session on the group's page that logs to this test.
func (t *T) Session() *Session {
	t.requireGroup()
	return NewSession(t.group.page, t.env.config, t.context.DebugLogger())
}

func (t *T) requireGroup() {
	require.NotNil(t, t.group, "test used the browser or seeded data without calling SetUpGroup")
}

func (t *T) snapshotPage() {
	ctx, cancel := t.detachedContext(snapshotTimeout)
	defer cancel()
	html, err := t.group.page.HTML(ctx)
	if err != nil {
		t.Debug("Could not capture page HTML: %s", err)
		return
	}
	t.Debug("Page HTML at time of failure:\n%s", html)
}

// consoleRouter receives the page's console errors and passes them to whichever test is
// running. The browser reports them from its own goroutines.
type consoleRouter struct {
	lock   sync.Mutex
	target framework.Logger
}

func (r *consoleRouter) Printf(message string, args ...interface{}) {
	r.lock.Lock()
	target := r.target
	r.lock.Unlock()
	if target != nil {
		target.Printf(message, args...)
	}
}

// routeTo sends output to target until the returned function is called.
func (r *consoleRouter) routeTo(target framework.Logger) func() {
	r.lock.Lock()
	previous := r.target
	r.target = target
	r.lock.Unlock()
	return func() {
		r.lock.Lock()
		r.target = previous
		r.lock.Unlock()
	}
}
