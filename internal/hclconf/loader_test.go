package hclconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/config"
)

func loadString(t *testing.T, hclContent string) (*config.Model, error) {
	t.Helper()
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "workflow.hcl")
	require.NoError(t, os.WriteFile(file, []byte(hclContent), 0o644))
	return NewLoader().Load(context.Background(), file)
}

func TestLoad_FullWorkflow(t *testing.T) {
	model, err := loadString(t, `
workflow "checks" {
  on  = ["push", "pull_request"]
  env = { CI = "true" }

  job "lint" {
    python  = "3.10"
    timeout = "5m"
    step "shell" "hello" {
      arguments {
        command = "true"
      }
    }
  }

  job "report" {
    needs             = ["lint"]
    continue_on_error = true
    step "shell" "notify" {
      env = { TOKEN = "x" }
      arguments {
        command = "true"
      }
    }
  }
}
`)
	require.NoError(t, err)
	require.Len(t, model.Workflows, 1)

	wf := model.Workflows[0]
	assert.Equal(t, "checks", wf.Name)
	assert.Equal(t, []string{"push", "pull_request"}, wf.On)
	assert.Equal(t, map[string]string{"CI": "true"}, wf.Env)
	require.Len(t, wf.Jobs, 2)

	lint := wf.Job("lint")
	require.NotNil(t, lint)
	assert.Equal(t, "3.10", lint.Python)
	assert.Equal(t, 5*time.Minute, lint.Timeout)
	require.Len(t, lint.Steps, 1)
	assert.Equal(t, "shell", lint.Steps[0].RunnerType)
	assert.Equal(t, "hello", lint.Steps[0].Name)
	require.NotNil(t, lint.Steps[0].Arguments)

	rep := wf.Job("report")
	require.NotNil(t, rep)
	assert.Equal(t, []string{"lint"}, rep.Needs)
	assert.True(t, rep.ContinueOnError)
	assert.Equal(t, map[string]string{"TOKEN": "x"}, rep.Steps[0].Env)
}

func TestLoad_DirectoryMergesFiles(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{
		"a.hcl": "workflow \"a\" {\n  job \"j\" {\n    step \"shell\" \"s\" {}\n  }\n}\n",
		"b.hcl": "workflow \"b\" {\n  job \"j\" {\n    step \"shell\" \"s\" {}\n  }\n}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0o644))
	}

	model, err := NewLoader().Load(context.Background(), tmpDir)
	require.NoError(t, err)
	assert.Len(t, model.Workflows, 2)
}

func TestLoad_InvalidSyntax(t *testing.T) {
	_, err := loadString(t, `workflow "broken" {`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_UnknownNeeds(t *testing.T) {
	_, err := loadString(t, `
workflow "w" {
  job "a" {
    needs = ["nope"]
    step "shell" "s" {}
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `needs unknown job "nope"`)
}

func TestLoad_DuplicateJobName(t *testing.T) {
	_, err := loadString(t, `
workflow "w" {
  job "a" {
    step "shell" "s" {}
  }
  job "a" {
    step "shell" "s" {}
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate job name "a"`)
}

func TestLoad_SelfNeeds(t *testing.T) {
	_, err := loadString(t, `
workflow "w" {
  job "a" {
    needs = ["a"]
    step "shell" "s" {}
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `needs itself`)
}

func TestLoad_JobWithoutSteps(t *testing.T) {
	_, err := loadString(t, `
workflow "w" {
  job "empty" {}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `declares no steps`)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	_, err := loadString(t, `
workflow "w" {
  job "a" {
    timeout = "soon"
    step "shell" "s" {}
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestLoad_NoFilesFound(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files found")
}
