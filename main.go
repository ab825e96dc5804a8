package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/edutask/edutask-e2e-tests/browser"
	"github.com/edutask/edutask-e2e-tests/edutask"
	"github.com/edutask/edutask-e2e-tests/framework"
	"github.com/edutask/edutask-e2e-tests/todotests"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	fixture, err := edutask.LoadFixture(params.fixture)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fixture error (%s): %s\n", params.fixture, err)
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	harness, err := framework.NewTestHarness(
		params.backendURL,
		params.frontendURL,
		params.statusTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "EduTask is not reachable: %s\n", err)
		os.Exit(1)
	}

	launcher, err := browser.NewLauncher(browser.Options{
		Driver:    params.driver,
		Headless:  params.headless,
		RemoteURL: params.remoteBrowser,
		Logger:    framework.PrefixedLogger(mainDebugLogger, "[browser] "),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Browser error: %s\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	fmt.Println()
	framework.PrintFilterDescription(params.filters)

	fmt.Printf("Running test suite as %s using %s\n", fixture.Email, params.driver)

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := todotests.RunTestSuite(
		ctx,
		harness,
		launcher,
		fixture,
		todotests.Config{
			FrontendURL:  harness.FrontendBaseURL(),
			WaitTimeout:  params.waitTimeout,
			PollInterval: params.pollInterval,
			Settle:       params.settle,
		},
		params.filters.AsFilter,
		testLogger,
	)
	stop()
	if err := launcher.Close(); err != nil {
		mainDebugLogger.Printf("Error closing browser: %s", err)
	}

	fmt.Println()
	framework.PrintResults(results)
	if !results.OK() {
		var failed []framework.TestID
		for _, f := range results.Failures {
			failed = append(failed, f.TestID)
		}
		fmt.Println()
		fmt.Println("To run only the failed tests again:")
		fmt.Printf("  %s\n", params.rerunCommand(os.Args[0], failed))
		os.Exit(1)
	}
}
