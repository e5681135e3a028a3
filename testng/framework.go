// Package testng adapts the TestNG test library to the generic test task pipeline.
//
// An Adapter owns the TestNG Options for one task. When the task runs, the adapter
// checks that every optional feature the options turn on is actually supported by the
// TestNG version on the task's classpath, and then freezes the options into a Spec
// inside a ProcessorFactory for the worker process. Checking is done by introspecting
// the TestNG sources on the classpath, never by running them, and only for features
// that the options actually use.
package testng

import (
	"github.com/launchdarkly/testng-adapter/framework"
	"github.com/launchdarkly/testng-adapter/introspect"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// FrameworkName identifies TestNG runs to the worker service.
const FrameworkName = "testng"

// SharedPackage is the package that the worker process must load from its shared scope.
const SharedPackage = "testng"

var _ framework.TestFramework = (*Adapter)(nil)

// Adapter is the TestNG implementation of framework.TestFramework. It is used by a single
// task on a single goroutine and is not safe for concurrent use.
type Adapter struct {
	filter       framework.TestFilter
	taskPath     string
	classpath    []string
	tempDirs     framework.TempDirFactory
	htmlReport   framework.ReportLocation
	options      *Options
	detector     *Detector
	taskLogger   framework.Logger
	logger       framework.Logger
	scopeFactory ScopeFactory
	scope        *introspect.Scope
	supported    map[string]bool
	closed       bool
}

// NewAdapter creates an Adapter for a task, with default Options.
func NewAdapter(task framework.TaskContext, filter framework.TestFilter) *Adapter {
	return newAdapter(task, filter, NewOptions(), defaultScopeFactory)
}

func newAdapter(
	task framework.TaskContext,
	filter framework.TestFilter,
	options *Options,
	scopeFactory ScopeFactory,
) *Adapter {
	if task.TempDirs == nil {
		task.TempDirs = framework.NewTempDirFactory("")
	}
	if task.HTMLReport == nil {
		task.HTMLReport = func() ldvalue.OptionalString { return ldvalue.OptionalString{} }
	}
	return &Adapter{
		filter:       filter,
		taskPath:     task.Path,
		classpath:    task.Classpath,
		tempDirs:     task.TempDirs,
		htmlReport:   task.HTMLReport,
		options:      options,
		detector:     NewDetector(task.Logger),
		taskLogger:   task.Logger,
		logger:       framework.PrefixedLogger(task.Logger, task.Path),
		scopeFactory: scopeFactory,
		supported:    make(map[string]bool),
	}
}

func (a *Adapter) taskContext() framework.TaskContext {
	return framework.TaskContext{
		Path:       a.taskPath,
		Classpath:  a.classpath,
		TempDirs:   a.tempDirs,
		HTMLReport: a.htmlReport,
		Logger:     a.taskLogger,
	}
}

// CopyWithFilters returns a new Adapter for the same task, with a copy of the current
// Options, bound to filter. The copy inspects the classpath independently.
func (a *Adapter) CopyWithFilters(filter framework.TestFilter) framework.TestFramework {
	return newAdapter(a.taskContext(), filter, a.options.Copy(), a.scopeFactory)
}

// ProcessorFactory verifies the optional features that the Options turn on, then
// resolves the suite files and freezes the Options into a Spec. Verification stops at
// the first unsupported feature, checking config failure policy, preserve order and
// group by instances in that order.
func (a *Adapter) ProcessorFactory() (framework.WorkerProcessorFactory, error) {
	if a.closed {
		return nil, framework.ErrClosed
	}
	if err := a.verifyConfigFailurePolicy(); err != nil {
		return nil, err
	}
	if err := a.verifyPreserveOrder(); err != nil {
		return nil, err
	}
	if err := a.verifyGroupByInstances(); err != nil {
		return nil, err
	}
	dir, err := a.tempDirs.Create()
	if err != nil {
		return nil, err
	}
	suiteFiles, err := a.options.Suites(dir)
	if err != nil {
		return nil, err
	}
	spec := compileSpec(a.options, a.filter)
	return &ProcessorFactory{
		outputDirectory: a.outputDirectory(),
		spec:            spec,
		suiteFiles:      suiteFiles,
	}, nil
}

// outputDirectory is the configured output directory, defaulting to the location of the
// task's HTML report.
func (a *Adapter) outputDirectory() string {
	if a.options.OutputDirectory != "" {
		return a.options.OutputDirectory
	}
	return a.htmlReport().OrElse("")
}

func (a *Adapter) WorkerConfigurationAction() func(*framework.WorkerProcessBuilder) {
	return func(b *framework.WorkerProcessBuilder) {
		b.SharedPackages(SharedPackage)
	}
}

func (a *Adapter) TestWorkerApplicationClasses() []string { return []string{} }

func (a *Adapter) TestWorkerApplicationModules() []string { return []string{} }

// UseDistributionDependencies is false because TestNG is never supplied by us; the task's
// own classpath has to include it.
func (a *Adapter) UseDistributionDependencies() bool { return false }

// Options returns the live Options. Changes made to them affect the next call to
// ProcessorFactory, but never a ProcessorFactory that was already returned.
func (a *Adapter) Options() *Options {
	return a.options
}

func (a *Adapter) Detector() framework.TestFrameworkDetector {
	if a.detector == nil {
		return nil
	}
	return a.detector
}

// Close releases the introspection scope and the detector, so that nothing loaded for
// this task outlives it. It is safe to call more than once.
func (a *Adapter) Close() error {
	if a.scope != nil {
		a.scope.Release()
		a.scope = nil
	}
	a.detector = nil
	a.closed = true
	return nil
}
