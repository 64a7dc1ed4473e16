package registry

import (
	"github.com/vk/checkgrid/internal/command"
)

// Module is the interface that all runner modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// StepDeps carries the per-step execution environment into a handler.
type StepDeps struct {
	// Env is the fully merged process environment for the step
	// (os < workflow < job < step), in "KEY=VALUE" form.
	Env []string
	// WorkDir is the directory commands run in.
	WorkDir string
	// Commands executes external tools.
	Commands *command.Runner
	// Tools maps a runtime name ("python", "node") to the absolute path
	// resolved for the job's version pin. Absent when the job pins nothing.
	Tools map[string]string
}

// Tool returns the resolved path for a pinned runtime, or the fallback
// binary name when the job carries no pin.
func (d *StepDeps) Tool(name, fallback string) string {
	if path, ok := d.Tools[name]; ok {
		return path
	}
	return fallback
}

// RegisteredRunner bundles a runner's input constructor with its handler.
// Fn must have the shape:
//
//	func(ctx context.Context, deps *StepDeps, input *T) (cty.Value, error)
//
// where *T is the type produced by NewInput.
type RegisteredRunner struct {
	Description string
	NewInput    func() any
	Fn          any
}

// Registry holds all registered runners for a single application instance.
type Registry struct {
	runners map[string]*RegisteredRunner
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{runners: make(map[string]*RegisteredRunner)}
}

// RegisterRunner adds a runner under the given type name. Registering the
// same name twice is a programmer error and panics.
func (r *Registry) RegisterRunner(typ string, runner *RegisteredRunner) {
	if _, dup := r.runners[typ]; dup {
		panic("registry: duplicate runner type " + typ)
	}
	r.runners[typ] = runner
}

// Runner returns the registered runner for a type name.
func (r *Registry) Runner(typ string) (*RegisteredRunner, bool) {
	runner, ok := r.runners[typ]
	return runner, ok
}

// Types returns all registered runner type names.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.runners))
	for typ := range r.runners {
		types = append(types, typ)
	}
	return types
}
