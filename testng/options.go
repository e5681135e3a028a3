package testng

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSuiteName           = "Default suite"
	DefaultTestName            = "Default test"
	DefaultConfigFailurePolicy = "skip"
	DefaultThreadCount         = -1

	// BuildSuiteFileName is the name of the file that an inline suite definition is
	// written to.
	BuildSuiteFileName = "build-suite.yaml"
)

// Options is the user-editable TestNG configuration of a task. Nothing is validated
// when a field is set; whether a value is usable depends on the TestNG version on the
// classpath, which is only checked when the task runs.
type Options struct {
	SuiteName           string   `yaml:"suite_name" toml:"suite_name"`
	TestName            string   `yaml:"test_name" toml:"test_name"`
	Parallel            string   `yaml:"parallel" toml:"parallel"`
	ThreadCount         int      `yaml:"thread_count" toml:"thread_count"`
	UseDefaultListeners bool     `yaml:"use_default_listeners" toml:"use_default_listeners"`
	IncludeGroups       []string `yaml:"include_groups" toml:"include_groups"`
	ExcludeGroups       []string `yaml:"exclude_groups" toml:"exclude_groups"`
	Listeners           []string `yaml:"listeners" toml:"listeners"`
	ConfigFailurePolicy string   `yaml:"config_failure_policy" toml:"config_failure_policy"`
	PreserveOrder       bool     `yaml:"preserve_order" toml:"preserve_order"`
	GroupByInstances    bool     `yaml:"group_by_instances" toml:"group_by_instances"`
	// OutputDirectory defaults to the location of the task's HTML report when empty.
	OutputDirectory string           `yaml:"output_directory" toml:"output_directory"`
	SuiteFiles      []string         `yaml:"suite_files" toml:"suite_files"`
	Suite           *SuiteDefinition `yaml:"suite" toml:"suite"`
}

// SuiteDefinition describes a suite inline, instead of in a separate suite file.
type SuiteDefinition struct {
	Name       string            `yaml:"name" toml:"name"`
	Parameters map[string]string `yaml:"parameters,omitempty" toml:"parameters"`
	Tests      []SuiteTest       `yaml:"tests" toml:"tests"`
}

type SuiteTest struct {
	Name          string   `yaml:"name" toml:"name"`
	Types         []string `yaml:"types,omitempty" toml:"types"`
	IncludeGroups []string `yaml:"include_groups,omitempty" toml:"include_groups"`
	ExcludeGroups []string `yaml:"exclude_groups,omitempty" toml:"exclude_groups"`
}

func NewOptions() *Options {
	return &Options{
		SuiteName:           DefaultSuiteName,
		TestName:            DefaultTestName,
		ThreadCount:         DefaultThreadCount,
		ConfigFailurePolicy: DefaultConfigFailurePolicy,
	}
}

// Copy returns an Options that is equal to o but shares no mutable state with it.
func (o *Options) Copy() *Options {
	ret := &Options{}
	ret.CopyFrom(o)
	return ret
}

// CopyFrom replaces every setting of o with a deep copy of the settings of other.
func (o *Options) CopyFrom(other *Options) {
	*o = *other
	o.IncludeGroups = copyStrings(other.IncludeGroups)
	o.ExcludeGroups = copyStrings(other.ExcludeGroups)
	o.Listeners = copyStrings(other.Listeners)
	o.SuiteFiles = copyStrings(other.SuiteFiles)
	o.Suite = other.Suite.copy()
}

// IncludeGroup adds groups to the included set, ignoring any that are already present.
func (o *Options) IncludeGroup(groups ...string) *Options {
	o.IncludeGroups = addToSet(o.IncludeGroups, groups)
	return o
}

// ExcludeGroup adds groups to the excluded set, ignoring any that are already present.
func (o *Options) ExcludeGroup(groups ...string) *Options {
	o.ExcludeGroups = addToSet(o.ExcludeGroups, groups)
	return o
}

func (o *Options) AddListeners(listeners ...string) *Options {
	o.Listeners = append(o.Listeners, listeners...)
	return o
}

func (o *Options) AddSuiteFiles(paths ...string) *Options {
	o.SuiteFiles = append(o.SuiteFiles, paths...)
	return o
}

// Suites returns the suite files to run: the configured suite files, followed by the
// inline suite definition if there is one, which is written into dir.
func (o *Options) Suites(dir string) ([]string, error) {
	suites := copyStrings(o.SuiteFiles)
	if o.Suite == nil {
		return suites, nil
	}
	data, err := yaml.Marshal(o.Suite)
	if err != nil {
		return nil, fmt.Errorf("could not render inline suite: %w", err)
	}
	path := filepath.Join(dir, BuildSuiteFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("could not write inline suite: %w", err)
	}
	return append(suites, path), nil
}

func (d *SuiteDefinition) copy() *SuiteDefinition {
	if d == nil {
		return nil
	}
	ret := &SuiteDefinition{Name: d.Name}
	if d.Parameters != nil {
		ret.Parameters = make(map[string]string, len(d.Parameters))
		for k, v := range d.Parameters {
			ret.Parameters[k] = v
		}
	}
	for _, t := range d.Tests {
		ret.Tests = append(ret.Tests, SuiteTest{
			Name:          t.Name,
			Types:         copyStrings(t.Types),
			IncludeGroups: copyStrings(t.IncludeGroups),
			ExcludeGroups: copyStrings(t.ExcludeGroups),
		})
	}
	return ret
}

// distinct returns a copy of values without repeats. Like copyStrings, it keeps a nil
// slice nil.
func distinct(values []string) []string {
	if values == nil {
		return nil
	}
	return addToSet(make([]string, 0, len(values)), values)
}

func addToSet(set []string, values []string) []string {
	for _, v := range values {
		found := false
		for _, s := range set {
			if s == v {
				found = true
				break
			}
		}
		if !found {
			set = append(set, v)
		}
	}
	return set
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	ret := make([]string, len(ss))
	copy(ret, ss)
	return ret
}
