package testng

import (
	"strings"
	"unicode"

	"github.com/launchdarkly/testng-adapter/framework"
	"github.com/launchdarkly/testng-adapter/introspect"
)

// Detector finds TestNG test types: types that declare at least one exported method whose
// name starts with "Test".
type Detector struct {
	logger framework.Logger
}

func NewDetector(logger framework.Logger) *Detector {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Detector{logger: logger}
}

// Detect returns the qualified names of the test types declared under dir, sorted.
func (d *Detector) Detect(dir string) ([]string, error) {
	scope, err := introspect.Load([]string{dir}, d.logger)
	if err != nil {
		return nil, err
	}
	defer scope.Release()

	var found []string
	for _, t := range scope.Types() {
		for _, m := range t.Methods() {
			if isTestMethod(m.Name) {
				found = append(found, t.QualifiedName())
				break
			}
		}
	}
	d.logger.Printf("Detected %d test types in %s", len(found), dir)
	return found, nil
}

func isTestMethod(name string) bool {
	if !strings.HasPrefix(name, "Test") {
		return false
	}
	rest := strings.TrimPrefix(name, "Test")
	return rest == "" || !unicode.IsLower([]rune(rest)[0])
}
