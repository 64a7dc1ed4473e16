package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/testutil"
)

func TestCoreExecution_IndependentJobsRunConcurrently(t *testing.T) {
	t.Parallel()

	// Arrange
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "parallel" {
				job "left" {
					step "probe" "p" {
						arguments {
							id       = "left"
							sleep_ms = 150
						}
					}
				}
				job "right" {
					step "probe" "p" {
						arguments {
							id       = "right"
							sleep_ms = 150
						}
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe})

	// Assert
	require.NoError(t, result.Err)
	left := probe.Execution("left")
	right := probe.Execution("right")
	require.NotNil(t, left)
	require.NotNil(t, right)
	assert.True(t, left.Start.Before(right.End) && right.Start.Before(left.End),
		"independent jobs should overlap in time")
}

func TestCoreExecution_NeedsOrdering(t *testing.T) {
	t.Parallel()

	// Arrange
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "chain" {
				job "first" {
					step "probe" "p" {
						arguments { id = "first" }
					}
				}
				job "second" {
					needs = ["first"]
					step "probe" "p" {
						arguments { id = "second" }
					}
				}
				job "third" {
					needs = ["second"]
					step "probe" "p" {
						arguments { id = "third" }
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe})

	// Assert
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"first", "second", "third"}, probe.Order())
}
