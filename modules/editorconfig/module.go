// Package editorconfig wraps editorconfig-checker, which verifies files
// against the repository's .editorconfig rules.
package editorconfig

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

// Input defines the arguments for the editorconfig runner.
type Input struct {
	// Binary overrides the checker executable; some installs name it "ec".
	Binary  string   `hcl:"binary,optional"`
	Exclude string   `hcl:"exclude,optional"`
	Paths   []string `hcl:"paths,optional"`
}

// OnRunEditorconfig is the handler for the 'editorconfig' runner.
func OnRunEditorconfig(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	binary := input.Binary
	if binary == "" {
		binary = "editorconfig-checker"
	}

	var args []string
	if input.Exclude != "" {
		args = append(args, "--exclude", input.Exclude)
	}
	args = append(args, input.Paths...)

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
				logger.Info("editorconfig-checker output.", "output", output)
			}
			return cty.NilVal, fmt.Errorf("editorconfig violations found")
		}
		return cty.NilVal, err
	}

	logger.Debug("editorconfig check passed.", "duration", result.Duration)
	return cty.NilVal, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("editorconfig", &registry.RegisteredRunner{
		Description: "Run the EditorConfig conformance check.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunEditorconfig,
	})
}
