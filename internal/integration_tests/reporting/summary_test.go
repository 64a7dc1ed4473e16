package integration_tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/report"
	"github.com/vk/checkgrid/internal/testutil"
	"gopkg.in/yaml.v3"
)

func TestReporting_SummaryTableIsRendered(t *testing.T) {
	t.Parallel()

	// Arrange
	probe := testutil.NewProbeModule()
	files := map[string]string{
		"workflow.hcl": `
			workflow "checks" {
				job "good" {
					step "probe" "p" {
						arguments { id = "good" }
					}
				}
				job "bad" {
					step "probe" "p" {
						arguments {
							id   = "bad"
							fail = true
						}
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe})

	// Assert: the table and the footer line land in the app's output stream.
	require.Error(t, result.Err)
	assert.Contains(t, result.LogOutput, "good")
	assert.Contains(t, result.LogOutput, "passed")
	assert.Contains(t, result.LogOutput, "failed")
	assert.Contains(t, result.LogOutput, "1/2 jobs passed")
}

func TestReporting_ResultsYAMLFile(t *testing.T) {
	t.Parallel()

	// Arrange
	probe := testutil.NewProbeModule()
	resultsPath := filepath.Join(t.TempDir(), "results.yaml")
	files := map[string]string{
		"workflow.hcl": `
			workflow "checks" {
				job "only" {
					step "probe" "p" {
						arguments { id = "only" }
					}
				}
			}
		`,
	}

	// Act
	result := testutil.RunWorkflowTest(t, files, []registry.Module{probe},
		testutil.WithResults(resultsPath))

	// Assert
	require.NoError(t, result.Err)
	data, err := os.ReadFile(resultsPath)
	require.NoError(t, err)

	var summaries []*report.Summary
	require.NoError(t, yaml.Unmarshal(data, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "checks", summaries[0].Workflow)
	assert.Equal(t, "push", summaries[0].Event)
	require.Len(t, summaries[0].Jobs, 1)
	assert.Equal(t, report.StatusPassed, summaries[0].Jobs[0].Status)
}
