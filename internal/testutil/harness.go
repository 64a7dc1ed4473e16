// Package testutil provides the shared harness and mock runner modules used
// by the integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/app"
	"github.com/vk/checkgrid/internal/hclconf"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/report"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// Summary returns the summary of the first executed workflow, or nil.
func (r *HarnessResult) Summary() *report.Summary {
	if r.App == nil {
		return nil
	}
	summaries := r.App.Summaries()
	if len(summaries) == 0 {
		return nil
	}
	return summaries[0]
}

// Option mutates the app config a harness run uses.
type Option func(*app.Config)

// WithEvent overrides the simulated trigger event.
func WithEvent(event string) Option {
	return func(cfg *app.Config) { cfg.Event = event }
}

// WithFailFast enables cancel-everything-on-failure behavior.
func WithFailFast() Option {
	return func(cfg *app.Config) { cfg.FailFast = true }
}

// WithResults makes the run write the YAML results file to path.
func WithResults(path string) Option {
	return func(cfg *app.Config) { cfg.ResultsPath = path }
}

// RunWorkflowTest provides a standardized harness for running integration
// tests: it writes the given files into a temp directory, builds an app with
// the provided mock modules, runs it and captures the log output. Startup
// panics are recovered into HarnessResult.Err.
func RunWorkflowTest(t *testing.T, files map[string]string, modules []registry.Module, opts ...Option) *HarnessResult {
	t.Helper()
	return RunWorkflowTestWithContext(context.Background(), t, files, modules, opts...)
}

// RunWorkflowTestWithContext is RunWorkflowTest with a caller-provided context.
func RunWorkflowTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules []registry.Module, opts ...Option) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	appConfig, err := app.NewConfig(app.Config{
		WorkflowPath: tmpDir,
		WorkDir:      tmpDir,
		Event:        "push",
		LogLevel:     "debug",
		LogFormat:    "text",
		WorkerCount:  4,
	})
	require.NoError(t, err)
	for _, opt := range opts {
		opt(appConfig)
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hclconf.NewLoader(), modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("CHECKGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
