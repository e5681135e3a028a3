// Package framework contains the framework-independent plumbing that test framework
// adapters are built on.
//
// The general model is:
//
// 1. A test task supplies a TaskContext: its path, the runtime classpath that the
// tests will run against, a factory for temporary directories, and the location of
// its HTML report.
//
// 2. A TestFramework adapter owns the user-editable options for one task. When the
// task is executed, the adapter validates those options against whatever version of
// the test library is installed on the classpath, and then freezes them into a
// WorkerProcessorFactory.
//
// 3. The WorkerProcessorFactory is handed to a worker process (see WorkerService),
// which is the only thing that actually runs tests.
//
// There is also a general notion of a test context which is similar to Go's
// *testing.T, allowing a tree of named checks to accumulate success/failure results.
package framework
