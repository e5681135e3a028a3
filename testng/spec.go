package testng

import (
	"github.com/launchdarkly/testng-adapter/framework"
	"github.com/launchdarkly/testng-adapter/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Spec is the frozen form of Options and the task's test filter, as the worker process
// sees it. A Spec never changes after it is built, and does not share any state with
// the Options it was built from.
type Spec struct {
	filter              framework.FilterSpec
	suiteName           string
	testName            string
	parallel            string
	threadCount         int
	useDefaultListeners bool
	includeGroups       []string
	excludeGroups       []string
	listeners           []string
	configFailurePolicy string
	preserveOrder       bool
	groupByInstances    bool
}

func compileSpec(options *Options, filter framework.TestFilter) Spec {
	var filterSpec framework.FilterSpec
	if filter != nil {
		filterSpec = filter.ToSpec()
	}
	return Spec{
		filter:              filterSpec,
		suiteName:           options.SuiteName,
		testName:            options.TestName,
		parallel:            options.Parallel,
		threadCount:         options.ThreadCount,
		useDefaultListeners: options.UseDefaultListeners,
		includeGroups:       distinct(options.IncludeGroups),
		excludeGroups:       distinct(options.ExcludeGroups),
		listeners:           copyStrings(options.Listeners),
		configFailurePolicy: options.ConfigFailurePolicy,
		preserveOrder:       options.PreserveOrder,
		groupByInstances:    options.GroupByInstances,
	}
}

func (s Spec) Filter() framework.FilterSpec { return s.filter }
func (s Spec) SuiteName() string            { return s.suiteName }
func (s Spec) TestName() string             { return s.testName }
func (s Spec) Parallel() string             { return s.parallel }
func (s Spec) ThreadCount() int             { return s.threadCount }
func (s Spec) UseDefaultListeners() bool    { return s.useDefaultListeners }
func (s Spec) IncludeGroups() []string      { return copyStrings(s.includeGroups) }
func (s Spec) ExcludeGroups() []string      { return copyStrings(s.excludeGroups) }
func (s Spec) Listeners() []string          { return copyStrings(s.listeners) }
func (s Spec) ConfigFailurePolicy() string  { return s.configFailurePolicy }
func (s Spec) PreserveOrder() bool          { return s.preserveOrder }
func (s Spec) GroupByInstances() bool       { return s.groupByInstances }

func (s Spec) params() servicedef.SpecParams {
	p := servicedef.SpecParams{
		Filter: servicedef.FilterParams{
			IncludePatterns: s.filter.IncludePatterns(),
			ExcludePatterns: s.filter.ExcludePatterns(),
		},
		SuiteName:           s.suiteName,
		TestName:            s.testName,
		UseDefaultListeners: s.useDefaultListeners,
		IncludeGroups:       s.IncludeGroups(),
		ExcludeGroups:       s.ExcludeGroups(),
		Listeners:           s.Listeners(),
		ConfigFailurePolicy: s.configFailurePolicy,
		PreserveOrder:       s.preserveOrder,
		GroupByInstances:    s.groupByInstances,
	}
	if s.parallel != "" {
		p.Parallel = ldvalue.NewOptionalString(s.parallel)
	}
	if s.threadCount != DefaultThreadCount {
		p.ThreadCount = ldvalue.NewOptionalInt(s.threadCount)
	}
	return p
}
