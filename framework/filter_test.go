package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexListSet(t *testing.T) {
	var list RegexList
	assert.False(t, list.IsDefined())

	require.NoError(t, list.Set("^case"))
	require.NoError(t, list.Set("other$"))
	assert.True(t, list.IsDefined())
	assert.Equal(t, `"^case" or "other$"`, list.String())

	assert.Error(t, list.Set("(unclosed"))
}

func TestRegexFiltersSelection(t *testing.T) {
	var filters RegexFilters
	assert.True(t, filters.AsFilter("anything"), "no patterns means everything runs")

	require.NoError(t, filters.MustMatch.Set("mqtt"))
	assert.True(t, filters.AsFilter("mqtt round trip"))
	assert.False(t, filters.AsFilter("http basics"))

	require.NoError(t, filters.MustNotMatch.Set("slow"))
	assert.True(t, filters.AsFilter("mqtt round trip"))
	assert.False(t, filters.AsFilter("mqtt slow path"))
}
