// Package ruff wraps the ruff linter/formatter. Mode "check" runs the style
// check; mode "format" runs the format check (no files are rewritten).
package ruff

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ruff's exit-code contract: 0 clean, 1 findings, 2 tool/usage error.
const exitFindings = 1

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the ruff runner.
type Input struct {
	Mode   string   `hcl:"mode,optional"`
	Paths  []string `hcl:"paths,optional"`
	Config string   `hcl:"config,optional"`
}

// BuildArgs translates the input into a ruff argument vector.
func BuildArgs(input *Input) ([]string, error) {
	var args []string
	switch input.Mode {
	case "", "check":
		args = []string{"check"}
	case "format":
		args = []string{"format", "--check"}
	default:
		return nil, fmt.Errorf("unknown ruff mode %q (want \"check\" or \"format\")", input.Mode)
	}

	if input.Config != "" {
		args = append(args, "--config", input.Config)
	}

	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return append(args, paths...), nil
}

// OnRunRuff is the handler for the 'ruff' runner.
func OnRunRuff(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	args, err := BuildArgs(input)
	if err != nil {
		return cty.NilVal, err
	}

	result, err := deps.Commands.Run(ctx, command.Spec{
		Name: "ruff",
		Args: args,
		Dir:  deps.WorkDir,
		Env:  deps.Env,
	})
	if err != nil {
		var exitErr *command.ExitError
		if errors.As(err, &exitErr) {
			if output := exitErr.Result.Output(); output != "" {
				logger.Info("ruff output.", "output", output)
			}
			if exitErr.Code == exitFindings {
				return cty.NilVal, fmt.Errorf("ruff found violations (mode %s)", displayMode(input.Mode))
			}
			return cty.NilVal, fmt.Errorf("ruff failed to run: %w", err)
		}
		return cty.NilVal, err
	}

	logger.Debug("ruff passed.", "duration", result.Duration)
	return cty.NilVal, nil
}

func displayMode(mode string) string {
	if mode == "" {
		return "check"
	}
	return mode
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("ruff", &registry.RegisteredRunner{
		Description: "Run the ruff style or format check.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunRuff,
	})
}
