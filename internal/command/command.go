// Package command is the process execution layer. Every external tool a
// runner module invokes goes through Runner.Run, which owns environment
// merging, output capture and exit-code translation.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/vk/checkgrid/internal/ctxlog"
)

// Spec describes a single command invocation.
type Spec struct {
	// Name is the binary to invoke. It is resolved via PATH unless it
	// contains a path separator.
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is the complete environment for the process, in "KEY=VALUE" form.
	// Nil means the runner process environment is inherited unchanged.
	Env []string
}

// Result holds the outcome of a completed command.
type Result struct {
	ExitCode int
	Duration time.Duration
	Stdout   string
	Stderr   string
}

// Output returns stdout and stderr joined, for log and error rendering.
func (r *Result) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stdout) + "\n" + strings.TrimSpace(r.Stderr))
}

// ExitError reports a command that ran to completion with a nonzero status.
type ExitError struct {
	Name   string
	Code   int
	Result *Result
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
}

// NotFoundError reports a tool that could not be resolved via PATH. It is
// kept distinct from ExitError so callers can report "tool not installed"
// separately from "tool found problems".
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found in PATH", e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Runner executes external commands. The zero value is ready to use.
type Runner struct{}

// Run executes the command described by spec and waits for it to finish,
// honoring context cancellation. A nonzero exit status is returned as an
// *ExitError alongside the populated Result.
func (r *Runner) Run(ctx context.Context, spec Spec) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("command", spec.Name)

	if _, err := exec.LookPath(spec.Name); err != nil && !strings.ContainsRune(spec.Name, os.PathSeparator) {
		return nil, &NotFoundError{Name: spec.Name, Err: err}
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Executing command.", "args", spec.Args, "dir", spec.Dir)
	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Duration: time.Since(start),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Cancellation looks like a killed process; surface the context
			// error so callers can tell a timeout from a real tool failure.
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.ExitCode = exitErr.ExitCode()
			logger.Debug("Command exited nonzero.", "exit_code", result.ExitCode, "duration", result.Duration)
			return result, &ExitError{Name: spec.Name, Code: result.ExitCode, Result: result}
		}
		return result, fmt.Errorf("starting %s: %w", spec.Name, err)
	}

	logger.Debug("Command succeeded.", "duration", result.Duration)
	return result, nil
}

// MergeEnv layers the given maps over a base environment. Later maps win.
// The result is sorted for deterministic process environments.
func MergeEnv(base []string, overlays ...map[string]string) []string {
	merged := make(map[string]string, len(base))
	for _, kv := range base {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	for _, overlay := range overlays {
		for k, v := range overlay {
			merged[k] = v
		}
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
