package testng

import (
	"errors"
	"fmt"

	"github.com/launchdarkly/testng-adapter/framework"
	"github.com/launchdarkly/testng-adapter/introspect"
)

// AnchorType is the TestNG entry point. Every optional feature is switched on by a
// setter declared on it.
const AnchorType = "testng.TestNG"

// Feature describes an optional TestNG setting that only some versions support.
//
// ParamCandidates lists the parameter type of the setter in order of preference. The
// first candidate that exists on the classpath is the one the setter must accept; later
// candidates are only consulted if the earlier types do not exist at all. This covers
// setters whose parameter type changed between versions.
type Feature struct {
	Name            string
	Method          string
	ParamCandidates []string
}

var (
	// FeatureConfigFailurePolicy is the setter for config failure policy. TestNG 6.9.12
	// and later take the xml.FailurePolicy enum; earlier versions took a string.
	FeatureConfigFailurePolicy = Feature{
		Name:            "config failure policy",
		Method:          "SetConfigFailurePolicy",
		ParamCandidates: []string{"xml.FailurePolicy", "string"},
	}
	FeaturePreserveOrder = Feature{
		Name:            "preserve order",
		Method:          "SetPreserveOrder",
		ParamCandidates: []string{"bool"},
	}
	FeatureGroupByInstances = Feature{
		Name:            "group by instances",
		Method:          "SetGroupByInstances",
		ParamCandidates: []string{"bool"},
	}
)

// AllFeatures lists every optional feature, in the order they are verified.
var AllFeatures = []Feature{
	FeatureConfigFailurePolicy,
	FeaturePreserveOrder,
	FeatureGroupByInstances,
}

// ScopeFactory creates the introspection scope for a task's classpath.
type ScopeFactory func(taskPath string, classpath []string, logger framework.Logger) (*introspect.Scope, error)

func defaultScopeFactory(taskPath string, classpath []string, logger framework.Logger) (*introspect.Scope, error) {
	return introspect.Load(classpath, logger)
}

// Supports reports whether the TestNG version on the task's classpath supports f. The
// answer is computed once per adapter. A *framework.SetupError is returned if TestNG
// itself cannot be found.
func (a *Adapter) Supports(f Feature) (bool, error) {
	if a.closed {
		return false, framework.ErrClosed
	}
	if supported, ok := a.supported[f.Name]; ok {
		return supported, nil
	}
	anchor, err := a.loadTestNG()
	if err != nil {
		return false, err
	}
	paramType := ""
	for _, candidate := range f.ParamCandidates {
		t, err := a.scope.LookupType(candidate)
		if err == nil {
			paramType = t.QualifiedName()
			break
		}
		if !errors.Is(err, introspect.ErrTypeNotFound) {
			return false, err
		}
	}
	supported := false
	if paramType != "" {
		_, supported = anchor.Method(f.Method, paramType)
	}
	a.logger.Printf("%s: %s(%s) supported=%t", f.Name, f.Method, paramType, supported)
	a.supported[f.Name] = supported
	return supported, nil
}

func (a *Adapter) verifyFeature(f Feature, failureMessage string) error {
	supported, err := a.Supports(f)
	if err != nil {
		return err
	}
	if !supported {
		return &framework.InvalidUserDataError{
			Message: failureMessage,
			Err:     fmt.Errorf("no method %s accepting %v on %s", f.Method, f.ParamCandidates, AnchorType),
		}
	}
	return nil
}

func (a *Adapter) verifyConfigFailurePolicy() error {
	if a.options.ConfigFailurePolicy == DefaultConfigFailurePolicy {
		return nil
	}
	return a.verifyFeature(FeatureConfigFailurePolicy, fmt.Sprintf(
		"The version of TestNG used does not support setting config failure policy to '%s'.",
		a.options.ConfigFailurePolicy))
}

func (a *Adapter) verifyPreserveOrder() error {
	if !a.options.PreserveOrder {
		return nil
	}
	return a.verifyFeature(FeaturePreserveOrder,
		"Preserving the order of tests (preserve order) is not supported by this version of TestNG.")
}

func (a *Adapter) verifyGroupByInstances() error {
	if !a.options.GroupByInstances {
		return nil
	}
	return a.verifyFeature(FeatureGroupByInstances,
		"Grouping tests by instances is not supported by this version of TestNG.")
}

func (a *Adapter) loadTestNG() (*introspect.Type, error) {
	if a.closed {
		return nil, framework.ErrClosed
	}
	if err := a.maybeInitScope(); err != nil {
		return nil, err
	}
	t, err := a.scope.LookupType(AnchorType)
	if err != nil {
		return nil, &framework.SetupError{Message: "Could not load TestNG.", Err: err}
	}
	return t, nil
}

func (a *Adapter) maybeInitScope() error {
	if a.scope != nil {
		return nil
	}
	a.logger.Printf("Creating introspection scope over %d classpath entries", len(a.classpath))
	scope, err := a.scopeFactory(a.taskPath, a.classpath, a.logger)
	if err != nil {
		return &framework.SetupError{Message: "Could not inspect the test runtime classpath.", Err: err}
	}
	a.scope = scope
	return nil
}
