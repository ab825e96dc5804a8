package framework

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeavesOmitsPassingGroups(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("a", func(c *Context) {})
			c.Run("b", func(c *Context) { c.SkipWithReason("no") })
		})
	})
	var names []string
	for _, r := range results.Leaves() {
		names = append(names, r.TestID.String())
	}
	assert.Equal(t, []string{"group/a", "group/b"}, names)
}

func TestLeavesKeepsFailedGroups(t *testing.T) {
	results := Results{
		Tests: []TestResult{
			{TestID: makeID("group", "a")},
			{TestID: makeID("group"), Errors: []error{errors.New("seeding failed")}},
		},
	}
	assert.Len(t, results.Leaves(), 2)
}
