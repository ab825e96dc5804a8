// Package framework contains the low-level implementation of test harness infrastructure
// that does not know anything about to-do lists.
//
// The general model is:
//
// 1. The test harness talks to an application under test over HTTP (to seed and clean up
// data) and through a browser (to exercise the UI). TestHarness holds the addresses of both
// and checks at startup that they are answering.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier, to accumulate
// success/failure results, and to register cleanup that runs even when a test fails.
//
// 3. Waiting is always explicit and bounded: Poll and Consistently take a timeout and an
// interval, and report a TimeoutError that says what was being waited for.
//
// The domain-specific code that knows what is being tested is responsible for seeding, for
// driving the browser, and for a domain-specific test API on top of the test context.
package framework
