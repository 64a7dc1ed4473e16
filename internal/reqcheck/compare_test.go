package reqcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare_EqualSetsPass(t *testing.T) {
	// Declaration order and version pins must not matter.
	expected := []string{"requests", "flask"}
	actual := []string{"flask", "requests"}

	result := Compare(expected, actual)

	assert.True(t, result.Equal())
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Extra)
}

func TestCompare_MissingPackageFails(t *testing.T) {
	result := Compare([]string{"requests"}, []string{"requests", "flask"})

	assert.False(t, result.Equal())
	assert.Empty(t, result.Missing)
	assert.Equal(t, []string{"flask"}, result.Extra)
}

func TestCompare_BothDirections(t *testing.T) {
	result := Compare([]string{"requests", "numpy"}, []string{"requests", "flask"})

	assert.False(t, result.Equal())
	assert.Equal(t, []string{"numpy"}, result.Missing)
	assert.Equal(t, []string{"flask"}, result.Extra)
}

func TestDiffText(t *testing.T) {
	diff := DiffText([]string{"numpy", "requests"}, []string{"flask", "requests"})

	assert.Contains(t, diff, "- numpy")
	assert.Contains(t, diff, "+ flask")
	assert.Contains(t, diff, "  requests")
}

func TestDiffText_NoDifference(t *testing.T) {
	diff := DiffText([]string{"requests"}, []string{"requests"})
	assert.Equal(t, "  requests", diff)
}
