// Package prettier wraps the Prettier format check (`prettier --check`).
// No files are rewritten; differences fail the step.
package prettier

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Prettier's exit-code contract: 0 clean, 1 unformatted files, 2 error.
const exitUnformatted = 1

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the prettier runner.
type Input struct {
	Paths []string `hcl:"paths,optional"`
	// Binary overrides the prettier executable, e.g. "npx" wrappers or a
	// node_modules/.bin path.
	Binary string `hcl:"binary,optional"`
}

// OnRunPrettier is the handler for the 'prettier' runner.
func OnRunPrettier(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	binary := input.Binary
	if binary == "" {
		binary = "prettier"
	}

	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	args := append([]string{"--check"}, paths...)

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
				logger.Info("prettier output.", "output", output)
			}
			if exitErr.Code == exitUnformatted {
				return cty.NilVal, fmt.Errorf("prettier found unformatted files")
			}
			return cty.NilVal, fmt.Errorf("prettier failed to run: %w", err)
		}
		return cty.NilVal, err
	}

	logger.Debug("prettier passed.", "duration", result.Duration)
	return cty.NilVal, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("prettier", &registry.RegisteredRunner{
		Description: "Run the Prettier format check.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunPrettier,
	})
}
