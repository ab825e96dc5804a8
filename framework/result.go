package framework

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Leaves returns the results of tests that had no subtests of their own. Group-level results
// are omitted unless the group itself failed, since a group's pass/fail is otherwise only the
// aggregate of its subtests.
func (r Results) Leaves() []TestResult {
	var ret []TestResult
	for i, t := range r.Tests {
		if len(t.TestID.Path) == 0 {
			continue
		}
		isParent := false
		for _, other := range r.Tests[:i] {
			if other.TestID.isChildOf(t.TestID) {
				isParent = true
				break
			}
		}
		if !isParent || len(t.Errors) != 0 {
			ret = append(ret, t)
		}
	}
	return ret
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

func (t TestID) isChildOf(parent TestID) bool {
	if len(t.Path) <= len(parent.Path) {
		return false
	}
	for i, p := range parent.Path {
		if t.Path[i] != p {
			return false
		}
	}
	return true
}

func PrintResults(results Results) {
	var passed, skipped int
	for _, t := range results.Leaves() {
		switch {
		case t.Skipped:
			skipped++
		case len(t.Errors) == 0:
			passed++
		}
	}
	if results.OK() {
		color.New(color.FgGreen).Printf("All tests passed (%d passed, %d skipped)\n", passed, skipped)
		return
	}
	color.New(color.FgRed, color.Bold).Printf("FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Printf("  * %s\n", f.TestID)
		for _, e := range f.Errors {
			for _, line := range strings.Split(e.Error(), "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
	fmt.Printf("(%d passed, %d skipped)\n", passed, skipped)
}
