package main

import (
	"testing"
	"time"

	"github.com/edutask/edutask-e2e-tests/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDefaults(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"edutask-e2e-tests"}))
	assert.Equal(t, defaultBackendURL, p.backendURL)
	assert.Equal(t, defaultFrontendURL, p.frontendURL)
	assert.Equal(t, defaultFixture, p.fixture)
	assert.Equal(t, "chromedp", p.driver)
	assert.True(t, p.headless)
	assert.Equal(t, 8*time.Second, p.waitTimeout)
	assert.Equal(t, time.Second, p.settle)
	assert.False(t, p.filters.MustMatch.IsDefined())
}

func TestReadFlags(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"edutask-e2e-tests",
		"-backend-url", "http://backend:5000", "-driver", "playwright", "-headless=false",
		"-wait-timeout", "3s", "-run", "toggle", "-skip", "tasks", "-debug"}))
	assert.Equal(t, "http://backend:5000", p.backendURL)
	assert.Equal(t, "playwright", p.driver)
	assert.False(t, p.headless)
	assert.Equal(t, 3*time.Second, p.waitTimeout)
	assert.True(t, p.filters.AsFilter(framework.TestID{Path: []string{"toggle", "unmark item"}}))
	assert.False(t, p.filters.AsFilter(framework.TestID{Path: []string{"tasks"}}))
	assert.True(t, p.debug)
}

func TestRemoteBrowserRequiresChromedp(t *testing.T) {
	var p commandParams
	assert.False(t, p.Read([]string{"edutask-e2e-tests", "-driver", "playwright", "-remote-browser", "ws://localhost:9222"}))
}

func TestRerunCommand(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"edutask-e2e-tests", "-wait-timeout", "3s"}))
	cmd := p.rerunCommand("./edutask-e2e-tests", []framework.TestID{
		{Path: []string{"create", "add item"}},
		{Path: []string{"toggle", "unmark item"}},
	})
	assert.Equal(t, "./edutask-e2e-tests"+
		" -backend-url http://localhost:5000 -frontend-url http://localhost:3000 -fixture fixtures/user.json"+
		" -wait-timeout 3s -run '^create/add item$' -run '^toggle/unmark item$' -debug", cmd)
}

func TestRerunPatternSelectsOnlyThatTest(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^"+regexpQuotePath(framework.TestID{Path: []string{"create", "add item"}})+"$"))
	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"create"}}))
	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"create", "add item"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"create", "add items preserves order"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"toggle"}}))
}
