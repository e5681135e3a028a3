package framework

import (
	"encoding/json"
	"io"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// TestFramework is implemented by each test library adapter. A task holds exactly one
// TestFramework, and must Close it when the task is done with it.
type TestFramework interface {
	// CopyWithFilters returns an independent adapter for the same task, bound to a
	// different test filter.
	CopyWithFilters(filter TestFilter) TestFramework

	// ProcessorFactory validates the current options and freezes them into the value
	// that is handed to the worker process.
	ProcessorFactory() (WorkerProcessorFactory, error)

	WorkerConfigurationAction() func(*WorkerProcessBuilder)
	TestWorkerApplicationClasses() []string
	TestWorkerApplicationModules() []string
	UseDistributionDependencies() bool

	// Detector returns the test discovery collaborator, or nil once the adapter is closed.
	Detector() TestFrameworkDetector

	io.Closer
}

// TestFrameworkDetector finds test types in compiled test sources.
type TestFrameworkDetector interface {
	Detect(dir string) ([]string, error)
}

// WorkerProcessorFactory is opaque to the task; the worker transport serializes it and
// the worker process uses it to build the test processor.
type WorkerProcessorFactory interface {
	FrameworkName() string
	json.Marshaler
}

// ReportLocation supplies the output location of a report, which may not have been
// configured yet when the adapter is created.
type ReportLocation func() ldvalue.OptionalString

// TaskContext contains the facts about a test task that an adapter needs. All of them
// are safe to share between copies of an adapter.
type TaskContext struct {
	Path       string
	Classpath  []string
	TempDirs   TempDirFactory
	HTMLReport ReportLocation
	Logger     Logger
}

// WorkerProcessBuilder accumulates the classloading setup for a worker process.
type WorkerProcessBuilder struct {
	sharedPackages []string
}

// SharedPackages marks packages that must be loaded from the shared scope inside the
// worker instead of the isolated test scope.
func (b *WorkerProcessBuilder) SharedPackages(packages ...string) *WorkerProcessBuilder {
	for _, p := range packages {
		if !containsString(b.sharedPackages, p) {
			b.sharedPackages = append(b.sharedPackages, p)
		}
	}
	return b
}

func (b *WorkerProcessBuilder) GetSharedPackages() []string {
	return copyStrings(b.sharedPackages)
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
