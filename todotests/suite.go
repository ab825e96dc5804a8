package todotests

import (
	"context"

	"github.com/edutask/edutask-e2e-tests/browser"
	"github.com/edutask/edutask-e2e-tests/edutask"
	"github.com/edutask/edutask-e2e-tests/framework"
)

func RunTestSuite(
	ctx context.Context,
	harness *framework.TestHarness,
	launcher browser.Launcher,
	fixture edutask.Fixture,
	config Config,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	if config.FrontendURL == "" {
		config.FrontendURL = harness.FrontendBaseURL()
	}
	env := &environment{
		ctx:      ctx,
		client:   edutask.NewClient(harness.BackendBaseURL(), harness.HTTPClient(), harness.Logger()),
		launcher: launcher,
		fixture:  fixture,
		config:   config.withDefaults(),
	}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := &T{context: c, env: env}

		t.Run("create", DoCreateTests)
		t.Run("toggle", DoToggleTests)
		t.Run("delete", DoDeleteTests)
		t.Run("tasks", DoTaskTests)
	})
}
