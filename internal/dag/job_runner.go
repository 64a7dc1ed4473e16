package dag

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/config"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/report"
	"github.com/vk/checkgrid/internal/toolver"
	"github.com/zclconf/go-cty/cty"
)

// JobRunner executes the steps of a single job sequentially. It implements
// the JobExecutor interface used by the Executor.
type JobRunner struct {
	Registry *registry.Registry
	Commands *command.Runner
	// BaseEnv is the runner process environment, exec "KEY=VALUE" form.
	BaseEnv []string
	// WorkflowEnv is layered over BaseEnv for every job of the workflow.
	WorkflowEnv map[string]string
	// WorkDir is where step commands run.
	WorkDir string
}

// RunJob runs a job to completion. The returned result is always non-nil;
// the error is non-nil exactly when the job failed.
func (r *JobRunner) RunJob(ctx context.Context, job *config.Job) (*report.JobResult, error) {
	logger := ctxlog.FromContext(ctx).With("job", job.Name)
	logger.Info("▶️ Starting job")

	start := time.Now()
	result := &report.JobResult{Name: job.Name, Status: report.StatusPassed}

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	tools, toolEnv, err := r.resolveRuntimes(ctx, job)
	if err != nil {
		logger.Error("Job setup failed.", "error", err)
		result.Status = report.StatusSetupFailed
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result, fmt.Errorf("job %q setup: %w", job.Name, err)
	}

	jobEnv := command.MergeEnv(r.BaseEnv, r.WorkflowEnv, job.Env, toolEnv)

	// Outputs of completed steps, addressable from later arguments as
	// step.<runner>.<name>.<field>.
	outputs := make(map[string]map[string]cty.Value)

	var jobErr error
	for _, step := range job.Steps {
		stepID := step.RunnerType + "." + step.Name
		stepLogger := logger.With("step", stepID)
		stepLogger.Info("▶️ Starting step")

		stepStart := time.Now()
		output, err := r.runStep(ctx, job, step, jobEnv, tools, outputs)
		stepResult := report.StepResult{
			Runner:   step.RunnerType,
			Name:     step.Name,
			Status:   report.StatusPassed,
			Duration: time.Since(stepStart),
		}

		if err != nil {
			stepResult.Status = report.StatusFailed
			stepResult.Error = err.Error()
			result.Steps = append(result.Steps, stepResult)

			if step.ContinueOnError {
				stepLogger.Warn("Step failed but is marked continue_on_error.", "error", err)
				continue
			}

			stepLogger.Error("Step failed.", "error", err)
			result.Status = report.StatusFailed
			result.FailedStep = stepID
			result.Error = err.Error()
			jobErr = fmt.Errorf("job %q step %s: %w", job.Name, stepID, err)
			break
		}

		stepLogger.Info("✅ Finished step")
		result.Steps = append(result.Steps, stepResult)

		if output != cty.NilVal && !output.IsNull() {
			if outputs[step.RunnerType] == nil {
				outputs[step.RunnerType] = make(map[string]cty.Value)
			}
			outputs[step.RunnerType][step.Name] = output
		}
	}

	result.Duration = time.Since(start)
	if jobErr != nil {
		return result, jobErr
	}
	logger.Info("✅ Finished job", "duration", result.Duration)
	return result, nil
}

// runStep decodes the step's arguments against the runner's input struct and
// dispatches to the registered handler.
func (r *JobRunner) runStep(
	ctx context.Context,
	job *config.Job,
	step *config.Step,
	jobEnv []string,
	tools map[string]string,
	outputs map[string]map[string]cty.Value,
) (cty.Value, error) {
	runner, ok := r.Registry.Runner(step.RunnerType)
	if !ok {
		// Steps are validated against the registry at startup; reaching
		// this is a bug.
		return cty.NilVal, fmt.Errorf("unknown runner type %q", step.RunnerType)
	}

	stepEnv := jobEnv
	if len(step.Env) > 0 {
		stepEnv = command.MergeEnv(jobEnv, step.Env)
	}

	input := runner.NewInput()
	if step.Arguments != nil {
		evalCtx := buildEvalContext(stepEnv, outputs)
		if diags := gohcl.DecodeBody(step.Arguments, evalCtx, input); diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("decoding arguments: %w", diags)
		}
	}

	deps := &registry.StepDeps{
		Env:      stepEnv,
		WorkDir:  r.WorkDir,
		Commands: r.Commands,
		Tools:    tools,
	}

	handlerFunc := reflect.ValueOf(runner.Fn)
	results := handlerFunc.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(deps),
		reflect.ValueOf(input),
	})

	outputVal := results[0].Interface().(cty.Value)
	if errResult := results[1].Interface(); errResult != nil {
		return cty.NilVal, errResult.(error)
	}
	return outputVal, nil
}

// resolveRuntimes verifies the job's interpreter pins and returns the tool
// path map plus the env vars exporting those paths to steps.
func (r *JobRunner) resolveRuntimes(ctx context.Context, job *config.Job) (map[string]string, map[string]string, error) {
	tools := make(map[string]string)
	toolEnv := make(map[string]string)

	type pin struct {
		rt  toolver.Runtime
		ver string
	}
	var pins []pin
	if job.Python != "" {
		pins = append(pins, pin{toolver.Python(job.Python), job.Python})
	}
	if job.Node != "" {
		pins = append(pins, pin{toolver.Node(job.Node), job.Node})
	}

	for _, p := range pins {
		path, err := toolver.Resolve(ctx, r.Commands, p.rt, p.ver)
		if err != nil {
			return nil, nil, err
		}
		tools[p.rt.Name] = path
		toolEnv[p.rt.EnvVar] = path
	}

	return tools, toolEnv, nil
}

// buildEvalContext exposes the merged environment as `env` and prior step
// outputs as `step.<runner>.<name>` to argument expressions.
func buildEvalContext(env []string, outputs map[string]map[string]cty.Value) *hcl.EvalContext {
	envVals := make(map[string]cty.Value)
	for _, kv := range env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			envVals[kv[:i]] = cty.StringVal(kv[i+1:])
		}
	}

	variables := map[string]cty.Value{}
	if len(envVals) > 0 {
		variables["env"] = cty.MapVal(envVals)
	} else {
		variables["env"] = cty.MapValEmpty(cty.String)
	}

	if len(outputs) > 0 {
		byRunner := make(map[string]cty.Value, len(outputs))
		for runnerType, byName := range outputs {
			byRunner[runnerType] = cty.ObjectVal(byName)
		}
		variables["step"] = cty.ObjectVal(byRunner)
	}

	return &hcl.EvalContext{Variables: variables}
}
