package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/testutil"
)

func TestCoreExecution_StepOutputExpression(t *testing.T) {
	t.Parallel()

	// Arrange: the second step's id is built from the first step's output.
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "outputs" {
				job "chain" {
					step "probe" "first" {
						arguments { id = "alpha" }
					}
					step "probe" "second" {
						arguments { id = "${step.probe.first.id}-beta" }
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe})

	// Assert
	require.NoError(t, result.Err)
	assert.True(t, probe.Executed("alpha"))
	assert.True(t, probe.Executed("alpha-beta"),
		"second step should see the first step's output")
}

func TestCoreExecution_EnvExpression(t *testing.T) {
	t.Parallel()

	// Arrange: workflow env is visible to argument expressions.
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "env" {
				env = { TARGET = "src" }
				job "j" {
					step "probe" "p" {
						arguments { id = env.TARGET }
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe})

	// Assert
	require.NoError(t, result.Err)
	assert.True(t, probe.Executed("src"))
}

func TestCoreExecution_EventFilterSkipsWorkflow(t *testing.T) {
	t.Parallel()

	// Arrange: the workflow reacts to push only; the run simulates a release.
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "push_only" {
				on = ["push"]
				job "j" {
					step "probe" "p" {
						arguments { id = "never" }
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe},
		testutil.WithEvent("release"))

	// Assert
	require.NoError(t, result.Err)
	assert.False(t, probe.Executed("never"))
	assert.Contains(t, result.LogOutput, "does not react to event")
	assert.Nil(t, result.Summary())
}
