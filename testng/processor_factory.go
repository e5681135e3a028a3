package testng

import (
	"encoding/json"

	"github.com/launchdarkly/testng-adapter/servicedef"
)

// ProcessorFactory is what an Adapter hands to the worker transport: everything the
// worker process needs to configure a TestNG run.
type ProcessorFactory struct {
	outputDirectory string
	spec            Spec
	suiteFiles      []string
}

func (f *ProcessorFactory) FrameworkName() string { return FrameworkName }

func (f *ProcessorFactory) OutputDirectory() string { return f.outputDirectory }

func (f *ProcessorFactory) Spec() Spec { return f.spec }

func (f *ProcessorFactory) SuiteFiles() []string { return copyStrings(f.suiteFiles) }

func (f *ProcessorFactory) Params() servicedef.ProcessorParams {
	return servicedef.ProcessorParams{
		OutputDirectory: f.outputDirectory,
		Spec:            f.spec.params(),
		SuiteFiles:      f.SuiteFiles(),
	}
}

func (f *ProcessorFactory) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Params())
}
