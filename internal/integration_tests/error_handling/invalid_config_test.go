package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/testutil"
)

func TestErrorHandling_InvalidHCLIsRejected(t *testing.T) {
	t.Parallel()

	// Arrange
	files := map[string]string{
		"workflow.hcl": `workflow "broken" {`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{testutil.NewProbeModule()})

	// Assert
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "failed to parse")
}

func TestErrorHandling_UnknownRunnerIsRejectedAtStartup(t *testing.T) {
	t.Parallel()

	// Arrange
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "w" {
				job "j" {
					step "mystery" "s" {
						arguments { id = "x" }
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe})

	// Assert
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), `unknown runner type "mystery"`)
	assert.False(t, probe.Executed("x"), "no job may run when validation fails")
}

func TestErrorHandling_JobTimeoutFailsJob(t *testing.T) {
	t.Parallel()

	// Arrange
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "w" {
				job "stuck" {
					timeout = "100ms"
					step "probe" "p" {
						arguments {
							id       = "stuck"
							sleep_ms = 5000
						}
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe})

	// Assert
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "job.stuck")
	summary := result.Summary()
	require.NotNil(t, summary)
	assert.True(t, summary.Failed())
}
