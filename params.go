package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/launchdarkly/testng-adapter/framework"

	"github.com/alessio/shellescape"
)

type commandParams struct {
	taskPath         string
	classpath        pathList
	configFile       string
	tempDir          string
	reportDir        string
	filters          framework.RegexFilters
	workerURL        string
	stopServiceAtEnd bool
	cancelRun        bool
	probeAll         bool
	debug            bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.taskPath, "task", ":test", "path of the test task, used in diagnostics")
	fs.Var(&c.classpath, "classpath", "runtime classpath entries, separated by "+string(os.PathListSeparator)+" (may be repeated)")
	fs.StringVar(&c.configFile, "config", "", "TestNG options file (.yaml, .yml or .toml)")
	fs.StringVar(&c.tempDir, "tmp", "", "base directory for temporary files (default: system temp directory)")
	fs.StringVar(&c.reportDir, "report", "", "HTML report directory, used as the default output directory")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.workerURL, "worker-url", "", "worker service URL; if set, the run is submitted to it")
	fs.BoolVar(&c.stopServiceAtEnd, "stop-service-at-end", false, "tell the worker service to exit after submitting")
	fs.BoolVar(&c.cancelRun, "cancel", false, "cancel the run right after submitting it and tell the worker service to discard it")
	fs.BoolVar(&c.probeAll, "probe-all", false, "report support for every optional TestNG feature")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if len(c.classpath) == 0 {
		fmt.Fprintln(os.Stderr, "-classpath is required")
		fs.Usage()
		return false
	}
	return true
}

// pathList is a flag.Value that accumulates path-list-separated entries.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, string(os.PathListSeparator))
}

func (p *pathList) Set(value string) error {
	for _, entry := range filepath.SplitList(value) {
		if entry != "" {
			*p = append(*p, entry)
		}
	}
	return nil
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
