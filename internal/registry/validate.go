package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/vk/checkgrid/internal/config"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	stepDepsType = reflect.TypeOf(&StepDeps{})
	ctyValueType = reflect.TypeOf(cty.Value{})
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// Validate checks the integrity of every registered runner: the handler must
// match the documented signature and NewInput must produce the pointer type
// the handler expects. A mismatch is a programmer error in a module.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	types := r.Types()
	sort.Strings(types)

	for _, typ := range types {
		runner := r.runners[typ]
		if runner.NewInput == nil {
			return fmt.Errorf("runner %q: NewInput is nil", typ)
		}
		if runner.Fn == nil {
			return fmt.Errorf("runner %q: Fn is nil", typ)
		}

		fnType := reflect.TypeOf(runner.Fn)
		if fnType.Kind() != reflect.Func || fnType.NumIn() != 3 || fnType.NumOut() != 2 {
			return fmt.Errorf("runner %q: handler must be func(ctx, *StepDeps, *Input) (cty.Value, error)", typ)
		}
		if !fnType.In(0).Implements(contextType) && fnType.In(0) != contextType {
			return fmt.Errorf("runner %q: first handler argument must be context.Context", typ)
		}
		if fnType.In(1) != stepDepsType {
			return fmt.Errorf("runner %q: second handler argument must be *registry.StepDeps", typ)
		}
		if fnType.Out(0) != ctyValueType {
			return fmt.Errorf("runner %q: first handler return must be cty.Value", typ)
		}
		if !fnType.Out(1).Implements(errorType) {
			return fmt.Errorf("runner %q: second handler return must be error", typ)
		}

		input := runner.NewInput()
		if input == nil {
			return fmt.Errorf("runner %q: NewInput returned nil", typ)
		}
		if reflect.TypeOf(input) != fnType.In(2) {
			return fmt.Errorf("runner %q: NewInput produces %T but handler expects %s",
				typ, input, fnType.In(2))
		}

		logger.Debug("Runner validated.", "type", typ)
	}

	return nil
}

// ValidateSteps checks that every step in the model references a registered
// runner type. This runs at startup so an unknown runner is reported before
// any job executes.
func (r *Registry) ValidateSteps(ctx context.Context, model *config.Model) error {
	for _, wf := range model.Workflows {
		for _, job := range wf.Jobs {
			for _, step := range job.Steps {
				if _, ok := r.runners[step.RunnerType]; !ok {
					return fmt.Errorf("workflow %q job %q: unknown runner type %q",
						wf.Name, job.Name, step.RunnerType)
				}
			}
		}
	}
	return nil
}
