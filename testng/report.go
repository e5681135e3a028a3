package testng

import (
	"fmt"

	"github.com/launchdarkly/testng-adapter/framework"

	"github.com/stretchr/testify/require"
)

// RunCapabilityReport checks every feature in AllFeatures against the classpath,
// regardless of whether the Options use it, and reports each as a check named
// "capabilities/<feature name>". A feature that is not supported is a failed check.
func (a *Adapter) RunCapabilityReport(filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		c.Run("capabilities", func(c *framework.Context) {
			_, err := a.loadTestNG()
			require.NoError(c, err, "TestNG must be on the classpath of %s", a.taskPath)

			for _, f := range AllFeatures {
				f := f
				c.Run(f.Name, func(c *framework.Context) {
					supported, err := a.Supports(f)
					require.NoError(c, err)
					c.Debug("%s with parameter types %v", f.Method, f.ParamCandidates)
					if !supported {
						c.Errorf("this version of TestNG has no %s setter", f.Name)
					}
				})
			}
		})
	})
}

// UnsupportedFeatures returns the names of the features in AllFeatures that the TestNG
// version on the classpath does not support.
func (a *Adapter) UnsupportedFeatures() ([]string, error) {
	var ret []string
	for _, f := range AllFeatures {
		supported, err := a.Supports(f)
		if err != nil {
			return nil, fmt.Errorf("could not check %s support: %w", f.Name, err)
		}
		if !supported {
			ret = append(ret, f.Name)
		}
	}
	return ret, nil
}
