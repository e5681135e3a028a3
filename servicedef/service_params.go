package servicedef

import (
	"encoding/json"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const CommandCancel = "cancel"

// WorkerServiceInfo is returned by the worker service from the initial status query.
type WorkerServiceInfo struct {
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

// SubmitParams is the body of the request that hands a test run to the worker service.
type SubmitParams struct {
	Framework string          `json:"framework"`
	Processor json.RawMessage `json:"processor"`
}

// ProcessorParams is the serialized form of a TestNG processor factory.
type ProcessorParams struct {
	OutputDirectory string     `json:"outputDirectory,omitempty"`
	Spec            SpecParams `json:"spec"`
	SuiteFiles      []string   `json:"suiteFiles,omitempty"`
}

type SpecParams struct {
	Filter              FilterParams           `json:"filter"`
	SuiteName           string                 `json:"suiteName"`
	TestName            string                 `json:"testName"`
	Parallel            ldvalue.OptionalString `json:"parallel,omitempty"`
	ThreadCount         ldvalue.OptionalInt    `json:"threadCount,omitempty"`
	UseDefaultListeners bool                   `json:"useDefaultListeners"`
	IncludeGroups       []string               `json:"includeGroups,omitempty"`
	ExcludeGroups       []string               `json:"excludeGroups,omitempty"`
	Listeners           []string               `json:"listeners,omitempty"`
	ConfigFailurePolicy string                 `json:"configFailurePolicy"`
	PreserveOrder       bool                   `json:"preserveOrder"`
	GroupByInstances    bool                   `json:"groupByInstances"`
}

type FilterParams struct {
	IncludePatterns []string `json:"includePatterns,omitempty"`
	ExcludePatterns []string `json:"excludePatterns,omitempty"`
}

type CommandParams struct {
	Command string `json:"command"`
}
