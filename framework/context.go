package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the framework's equivalent of *testing.T. It accumulates errors for one test,
// owns that test's debug logger, and runs deferred cleanup actions when the test ends.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
	onFailure   []func()
}

func Run(
	filter func(TestID) bool,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		if c.failed {
			for _, f := range c.onFailure {
				c.runProtected(f)
			}
		}
		for i := len(c.cleanups) - 1; i >= 0; i-- {
			c.runProtected(c.cleanups[i])
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

// runProtected runs a cleanup or failure hook. A hook that calls FailNow, or panics, is
// recorded as a failure of this test but does not stop the remaining hooks.
func (c *Context) runProtected(f func()) {
	defer func() {
		if r := recover(); r != nil {
			c.failed = true
			if _, ok := r.(*Context); ok {
				return
			}
			err := fmt.Errorf("unexpected panic in cleanup: %+v", r)
			c.errors = append(c.errors, err)
			c.env.testLogger.TestError(c.id, err)
		}
	}()
	f()
}

func (c *Context) ID() TestID {
	return c.id
}

func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// reformatError drops the "Error Trace" block that testify adds to assertion messages; the
// stack locations refer to harness source files and only clutter the console.
func reformatError(err error) error {
	var out []string
	inTrace := false
	for _, line := range strings.Split(err.Error(), "\n") {
		trimmed := strings.TrimLeft(line, "\t ")
		if strings.HasPrefix(trimmed, "Error Trace:") {
			inTrace = true
			continue
		}
		if inTrace && strings.HasPrefix(line, "\t ") {
			continue
		}
		inTrace = false
		if trimmed == "" {
			continue
		}
		out = append(out, strings.TrimPrefix(line, "\t"))
	}
	return errors.New(strings.Join(out, "\n"))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to run when this test ends, whether it passed, failed or
// was skipped. Deferred functions run in last-in-first-out order, like Go's defer.
func (c *Context) Defer(cleanup func()) {
	c.cleanups = append(c.cleanups, cleanup)
}

// OnFailure schedules a function to run if the test fails, before any deferred cleanup.
func (c *Context) OnFailure(action func()) {
	c.onFailure = append(c.onFailure, action)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
