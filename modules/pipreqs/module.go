// Package pipreqs wraps the pipreqs tool, which scans a source tree and
// emits the list of top-level packages its imports require. The generated
// file path is exposed as a step output for a later reqdiff step.
package pipreqs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the pipreqs runner.
type Input struct {
	// Path is the source tree to scan. Defaults to the working directory.
	Path string `hcl:"path,optional"`
	// SavePath receives the generated listing. Defaults to a temp file.
	SavePath string `hcl:"save_path,optional"`
}

// OnRunPipreqs is the handler for the 'pipreqs' runner.
func OnRunPipreqs(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	scanPath := input.Path
	if scanPath == "" {
		scanPath = "."
	}

	savePath := input.SavePath
	if savePath == "" {
		f, err := os.CreateTemp("", "checkgrid-pipreqs-*.txt")
		if err != nil {
			return cty.NilVal, fmt.Errorf("creating output file: %w", err)
		}
		savePath = f.Name()
		f.Close()
	} else if !filepath.IsAbs(savePath) && deps.WorkDir != "" {
		savePath = filepath.Join(deps.WorkDir, savePath)
	}

	result, err := deps.Commands.Run(ctx, command.Spec{
		Name: "pipreqs",
		Args: []string{"--force", "--savepath", savePath, scanPath},
		Dir:  deps.WorkDir,
		Env:  deps.Env,
	})
	if err != nil {
		return cty.NilVal, fmt.Errorf("pipreqs scan failed: %w", err)
	}

	logger.Debug("pipreqs generated requirements.", "path", savePath, "duration", result.Duration)
	return cty.ObjectVal(map[string]cty.Value{
		"path": cty.StringVal(savePath),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("pipreqs", &registry.RegisteredRunner{
		Description: "Generate a requirements listing from source imports.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunPipreqs,
	})
}
