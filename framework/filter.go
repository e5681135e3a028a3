package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// TestFilter is the user-facing selection of tests for a task. Adapters only ever see
// its compiled form.
type TestFilter interface {
	ToSpec() FilterSpec
}

// FilterSpec is the immutable, compiled form of a TestFilter.
type FilterSpec struct {
	includePatterns []string
	excludePatterns []string
}

func NewFilterSpec(includePatterns, excludePatterns []string) FilterSpec {
	return FilterSpec{
		includePatterns: copyStrings(includePatterns),
		excludePatterns: copyStrings(excludePatterns),
	}
}

func (f FilterSpec) IncludePatterns() []string { return copyStrings(f.includePatterns) }

func (f FilterSpec) ExcludePatterns() []string { return copyStrings(f.excludePatterns) }

func (f FilterSpec) IsEmpty() bool {
	return len(f.includePatterns) == 0 && len(f.excludePatterns) == 0
}

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	name := id.String()
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(name)) &&
		!r.MustNotMatch.AnyMatch(name)
}

func (r RegexFilters) ToSpec() FilterSpec {
	return NewFilterSpec(r.MustMatch.Patterns(), r.MustNotMatch.Patterns())
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func (r RegexList) Patterns() []string {
	ret := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		ret = append(ret, p.String())
	}
	return ret
}

// PrintFilterDescription describes the filter criteria, and any features that were
// requested but that the installed test library does not support.
func PrintFilterDescription(out io.Writer, filters RegexFilters, unsupportedFeatures []string) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this task:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}

	if len(unsupportedFeatures) > 0 {
		fmt.Fprintln(out, "The test library on the classpath does not support the following features:")
		fmt.Fprintf(out, "  %s\n", strings.Join(unsupportedFeatures, ", "))
		fmt.Fprintln(out)
	}
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	ret := make([]string, len(ss))
	copy(ret, ss)
	return ret
}
