// Package shell provides the generic command runner: it executes an
// arbitrary external command and fails the step on any nonzero exit.
package shell

import (
	"context"
	"errors"

	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the shell runner.
type Input struct {
	Command string   `hcl:"command"`
	Args    []string `hcl:"args,optional"`
	Dir     string   `hcl:"dir,optional"`
}

// OnRunShell is the handler for the 'shell' runner.
func OnRunShell(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	dir := input.Dir
	if dir == "" {
		dir = deps.WorkDir
	}

	result, err := deps.Commands.Run(ctx, command.Spec{
		Name: input.Command,
		Args: input.Args,
		Dir:  dir,
		Env:  deps.Env,
	})
	if err != nil {
		var exitErr *command.ExitError
		if errors.As(err, &exitErr) && exitErr.Result.Output() != "" {
			logger.Info("Command output.", "output", exitErr.Result.Output())
		}
		return cty.NilVal, err
	}

	if result.Output() != "" {
		logger.Debug("Command output.", "output", result.Output())
	}

	return cty.ObjectVal(map[string]cty.Value{
		"exit_code":   cty.NumberIntVal(int64(result.ExitCode)),
		"duration_ms": cty.NumberIntVal(result.Duration.Milliseconds()),
		"stdout":      cty.StringVal(result.Stdout),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("shell", &registry.RegisteredRunner{
		Description: "Run an arbitrary command and gate on its exit code.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunShell,
	})
}
