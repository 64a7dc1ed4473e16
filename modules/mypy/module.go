// Package mypy wraps the mypy static type checker. When the job pins a
// Python runtime, mypy is invoked through that interpreter so the check
// sees the pinned environment.
package mypy

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the mypy runner.
type Input struct {
	Paths      []string `hcl:"paths,optional"`
	Strict     bool     `hcl:"strict,optional"`
	ConfigFile string   `hcl:"config_file,optional"`
	// InstallStubs runs `mypy --install-types --non-interactive` before the
	// check. A failure of the stub installation never fails the step.
	InstallStubs bool `hcl:"install_stubs,optional"`
}

// invocation returns the binary and leading args for running mypy, routing
// through the pinned interpreter when one was resolved for the job.
func invocation(deps *registry.StepDeps) (string, []string) {
	if python, ok := deps.Tools["python"]; ok {
		return python, []string{"-m", "mypy"}
	}
	return "mypy", nil
}

// OnRunMypy is the handler for the 'mypy' runner.
func OnRunMypy(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	binary, lead := invocation(deps)

	if input.InstallStubs {
		installArgs := append(append([]string{}, lead...), "--install-types", "--non-interactive")
		if _, err := deps.Commands.Run(ctx, command.Spec{
			Name: binary,
			Args: installArgs,
			Dir:  deps.WorkDir,
			Env:  deps.Env,
		}); err != nil {
			if ctx.Err() != nil {
				return cty.NilVal, ctx.Err()
			}
			// Explicitly suppressed: missing stubs should surface as type
			// errors in the real check, not as an installation failure.
			logger.Warn("Type stub installation failed, continuing.", "error", err)
		}
	}

	args := append([]string{}, lead...)
	if input.Strict {
		args = append(args, "--strict")
	}
	if input.ConfigFile != "" {
		args = append(args, "--config-file", input.ConfigFile)
	}
	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	args = append(args, paths...)

	result, err := deps.Commands.Run(ctx, command.Spec{
		Name: binary,
		Args: args,
		Dir:  deps.WorkDir,
		Env:  deps.Env,
	})
	if err != nil {
		var exitErr *command.ExitError
		if errors.As(err, &exitErr) {
			if output := exitErr.Result.Output(); output != "" {
				logger.Info("mypy output.", "output", output)
			}
			return cty.NilVal, fmt.Errorf("mypy found type errors")
		}
		return cty.NilVal, err
	}

	logger.Debug("mypy passed.", "duration", result.Duration)
	return cty.NilVal, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("mypy", &registry.RegisteredRunner{
		Description: "Run the mypy static type check.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunMypy,
	})
}
