package framework

import (
	"fmt"
	"strings"
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

// Skipped returns the IDs of every check that was skipped, either by the filter or
// by the check itself.
func (r Results) Skipped() []TestID {
	var ret []TestID
	for _, t := range r.Tests {
		if t.Skipped {
			ret = append(ret, t.TestID)
		}
	}
	return ret
}

type TestID struct {
	Path []string
}

// Plus returns a new TestID with name appended. The receiver's path is never shared.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
