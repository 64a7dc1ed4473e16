// Package reqdiff implements the dependency-consistency check: two
// requirement listings pass if and only if they declare the same set of
// top-level package names, ignoring version constraints.
package reqdiff

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/reqcheck"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the reqdiff runner.
type Input struct {
	// Expected is the committed requirements file.
	Expected string `hcl:"expected"`
	// Generated is the listing derived from the source tree (typically a
	// pipreqs step output).
	Generated string `hcl:"generated"`
}

// OnRunReqdiff is the handler for the 'reqdiff' runner.
func OnRunReqdiff(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	expected, err := reqcheck.ParseFile(resolve(deps.WorkDir, input.Expected))
	if err != nil {
		return cty.NilVal, fmt.Errorf("reading expected listing: %w", err)
	}
	generated, err := reqcheck.ParseFile(resolve(deps.WorkDir, input.Generated))
	if err != nil {
		return cty.NilVal, fmt.Errorf("reading generated listing: %w", err)
	}

	result := reqcheck.Compare(expected, generated)
	if !result.Equal() {
		logger.Info("Requirement sets differ.",
			"missing", result.Missing, "extra", result.Extra,
			"diff", "\n"+reqcheck.DiffText(expected, generated))
		return cty.NilVal, fmt.Errorf("requirement sets differ: missing [%s], extra [%s]",
			strings.Join(result.Missing, ", "), strings.Join(result.Extra, ", "))
	}

	logger.Debug("Requirement sets match.", "packages", len(expected))
	return cty.ObjectVal(map[string]cty.Value{
		"packages": cty.NumberIntVal(int64(len(expected))),
	}), nil
}

func resolve(workDir, path string) string {
	if path == "" || filepath.IsAbs(path) || workDir == "" {
		return path
	}
	return filepath.Join(workDir, path)
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("reqdiff", &registry.RegisteredRunner{
		Description: "Compare two requirements listings as name sets.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunReqdiff,
	})
}
