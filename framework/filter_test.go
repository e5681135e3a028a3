package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFilters(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^orders/"))
	require.NoError(t, filters.MustNotMatch.Set("slow"))

	assert.True(t, filters.AsFilter(TestID{Path: []string{"orders", "create"}}))
	assert.False(t, filters.AsFilter(TestID{Path: []string{"orders", "slow create"}}))
	assert.False(t, filters.AsFilter(TestID{Path: []string{"billing", "create"}}))

	assert.Error(t, filters.MustMatch.Set("("))
}

func TestRegexFiltersToSpec(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("a.*"))
	require.NoError(t, filters.MustNotMatch.Set("b"))

	spec := filters.ToSpec()
	assert.Equal(t, []string{"a.*"}, spec.IncludePatterns())
	assert.Equal(t, []string{"b"}, spec.ExcludePatterns())
	assert.False(t, spec.IsEmpty())

	patterns := spec.IncludePatterns()
	patterns[0] = "changed"
	assert.Equal(t, []string{"a.*"}, spec.IncludePatterns())

	assert.True(t, RegexFilters{}.ToSpec().IsEmpty())
}

func TestPrintFilterDescription(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("x"))
	var buf bytes.Buffer

	PrintFilterDescription(&buf, filters, []string{"preserve order", "group by instances"})

	assert.Equal(t, `Some tests will be skipped based on the filter criteria for this task:
  skip any not matching "x"

The test library on the classpath does not support the following features:
  preserve order, group by instances

`, buf.String())

	buf.Reset()
	PrintFilterDescription(&buf, RegexFilters{}, nil)
	assert.Equal(t, "", buf.String())
}
