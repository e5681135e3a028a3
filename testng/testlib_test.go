package testng

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/launchdarkly/testng-adapter/framework"
	"github.com/launchdarkly/testng-adapter/introspect"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Fake TestNG releases, written onto a classpath directory by installTestNG.
var (
	testNG5 = map[string]string{
		"testng/testng.go": `package testng

type TestNG struct{}

func (t *TestNG) SetSuiteName(name string) {}
`,
	}

	testNG6 = map[string]string{
		"testng/testng.go": `package testng

type TestNG struct{}

func (t *TestNG) SetConfigFailurePolicy(policy string) {}

func (t *TestNG) SetPreserveOrder(preserve bool) {}
`,
	}

	testNG7 = map[string]string{
		"testng/testng.go": `package testng

import "example.com/testng/xml"

type TestNG struct{}

func (t *TestNG) SetConfigFailurePolicy(policy xml.FailurePolicy) {}

func (t *TestNG) SetPreserveOrder(preserve bool) {}

func (t *TestNG) SetGroupByInstances(group bool) {}
`,
		"testng/xml/suite.go": `package xml

type FailurePolicy int

const (
	Skip FailurePolicy = iota
	Continue
)
`,
	}

	// setters promoted from an embedded struct, with the xml package imported under another name
	testNGEmbedded = map[string]string{
		"testng/testng.go": `package testng

type TestNG struct {
	*settings
}

func (t *TestNG) Run() {}
`,
		"testng/settings.go": `package testng

import suite "example.com/testng/xml"

type settings struct {
	policy suite.FailurePolicy
}

func (s *settings) SetConfigFailurePolicy(policy suite.FailurePolicy) {}

func (s *settings) SetPreserveOrder(preserve bool) {}

func (s *settings) SetGroupByInstances(group bool) {}
`,
		"testng/xml/suite.go": `package xml

type FailurePolicy int
`,
	}

	// the enum exists, but the setter was never updated to take it
	testNGBrokenPolicy = map[string]string{
		"testng/testng.go": `package testng

type TestNG struct{}

func (t *TestNG) SetConfigFailurePolicy(policy string) {}
`,
		"testng/xml/suite.go": `package xml

type FailurePolicy int
`,
	}
)

func installTestNG(t *testing.T, files map[string]string) []string {
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return []string{dir}
}

type scopeCounter struct {
	created int
}

func (s *scopeCounter) factory(taskPath string, classpath []string, logger framework.Logger) (*introspect.Scope, error) {
	s.created++
	return introspect.Load(classpath, logger)
}

type fixture struct {
	adapter *Adapter
	scopes  *scopeCounter
	tempDir string
}

func newFixture(t *testing.T, classpath []string) *fixture {
	scopes := &scopeCounter{}
	tempDir := t.TempDir()
	task := framework.TaskContext{
		Path:      ":test",
		Classpath: classpath,
		TempDirs:  framework.NewTempDirFactory(tempDir),
		HTMLReport: func() ldvalue.OptionalString {
			return ldvalue.NewOptionalString("/reports/tests/html")
		},
	}
	a := newAdapter(task, framework.RegexFilters{}, NewOptions(), scopes.factory)
	t.Cleanup(func() { _ = a.Close() })
	return &fixture{adapter: a, scopes: scopes, tempDir: tempDir}
}
