package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/launchdarkly/testng-adapter/framework"
	"github.com/launchdarkly/testng-adapter/servicedef"
	"github.com/launchdarkly/testng-adapter/testng"

	"github.com/fatih/color"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const statusQueryTimeout = time.Second * 10

const processorFileName = "processor.json"

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	os.Exit(run(params))
}

func run(params commandParams) int {
	debugLogger := framework.NullLogger()
	if params.debug {
		debugLogger = log.New(os.Stderr, "", log.LstdFlags)
	}

	options := testng.NewOptions()
	if params.configFile != "" {
		loaded, err := testng.LoadOptions(params.configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		options = loaded
	}

	reportDir := params.reportDir
	task := framework.TaskContext{
		Path:      params.taskPath,
		Classpath: params.classpath,
		TempDirs:  framework.NewTempDirFactory(params.tempDir),
		HTMLReport: func() ldvalue.OptionalString {
			if reportDir == "" {
				return ldvalue.OptionalString{}
			}
			return ldvalue.NewOptionalString(reportDir)
		},
		Logger: debugLogger,
	}
	adapter := testng.NewAdapter(task, params.filters)
	defer adapter.Close()
	adapter.Options().CopyFrom(options)

	if params.probeAll {
		unsupported, err := adapter.UnsupportedFeatures()
		if err != nil {
			reportError(err)
			return 1
		}
		fmt.Println()
		framework.PrintFilterDescription(os.Stdout, params.filters, unsupported)
		results := adapter.RunCapabilityReport(nil, &ConsoleTestLogger{
			DebugOutputOnFailure: true,
			DebugOutputOnSuccess: params.debug,
		})
		fmt.Println()
		printResults(results)
		fmt.Println()
	}

	factory, err := adapter.ProcessorFactory()
	if err != nil {
		reportError(err)
		return 1
	}

	processorFile, err := writeProcessor(task.TempDirs, factory)
	if err != nil {
		reportError(err)
		return 1
	}
	var worker framework.WorkerProcessBuilder
	adapter.WorkerConfigurationAction()(&worker)
	var cmd commandBuilder
	cmd.add("testng-worker", "-processor", processorFile)
	if shared := worker.GetSharedPackages(); len(shared) > 0 {
		cmd.add("-shared-packages", strings.Join(shared, ","))
	}
	fmt.Printf("Processor written to %s\n", processorFile)
	fmt.Printf("Worker command: %s\n", cmd)

	if params.workerURL == "" {
		return 0
	}
	service, err := framework.NewWorkerService(params.workerURL, statusQueryTimeout, debugLogger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Worker service error: %s\n", err)
		return 1
	}
	if !service.HasCapability(testng.FrameworkName) {
		fmt.Fprintf(os.Stderr, "Worker service does not advertise the %q capability\n", testng.FrameworkName)
		return 1
	}
	entity, err := service.Submit(factory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Worker service error: %s\n", err)
		return 1
	}
	fmt.Printf("Submitted run %s\n", entity.ResourceURL())
	if params.cancelRun {
		fmt.Println("Cancelling run")
		if err := entity.SendCommand(servicedef.CommandCancel); err != nil {
			fmt.Fprintf(os.Stderr, "Error when cancelling run: %s\n", err)
		}
		if err := entity.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error when discarding run: %s\n", err)
			return 1
		}
	}
	if params.stopServiceAtEnd {
		fmt.Println("Stopping worker service")
		if err := service.StopService(); err != nil {
			fmt.Fprintf(os.Stderr, "Error when stopping worker service: %s\n", err)
		}
	}
	return 0
}

func writeProcessor(tempDirs framework.TempDirFactory, factory framework.WorkerProcessorFactory) (string, error) {
	dir, err := tempDirs.Create()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(factory, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, processorFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func reportError(err error) {
	switch {
	case framework.IsInvalidUserData(err):
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Invalid TestNG options:"), err)
	case framework.IsSetupError(err):
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("TestNG setup error:"), err)
	default:
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), err)
	}
}
