package hclconf

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/checkgrid/internal/config"
)

// translateWorkflow converts a decoded workflow block into the model form.
func translateWorkflow(wf *workflowBlock) (*config.Workflow, error) {
	out := &config.Workflow{
		Name: wf.Name,
		On:   wf.On,
		Env:  wf.Env,
	}

	for _, jb := range wf.Jobs {
		job, err := translateJob(jb)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: %w", wf.Name, err)
		}
		out.Jobs = append(out.Jobs, job)
	}

	return out, nil
}

func translateJob(jb *jobBlock) (*config.Job, error) {
	job := &config.Job{
		Name:            jb.Name,
		Needs:           jb.Needs,
		Env:             jb.Env,
		Python:          jb.Python,
		Node:            jb.Node,
		ContinueOnError: jb.ContinueOnError,
	}

	if jb.Timeout != "" {
		d, err := time.ParseDuration(jb.Timeout)
		if err != nil {
			return nil, fmt.Errorf("job %q: invalid timeout %q: %w", jb.Name, jb.Timeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("job %q: timeout must be positive, got %q", jb.Name, jb.Timeout)
		}
		job.Timeout = d
	}

	if len(jb.Steps) == 0 {
		return nil, fmt.Errorf("job %q declares no steps", jb.Name)
	}

	for _, sb := range jb.Steps {
		var body hcl.Body
		if sb.Arguments != nil {
			body = sb.Arguments.Body
		}
		job.Steps = append(job.Steps, &config.Step{
			RunnerType:      sb.RunnerType,
			Name:            sb.Name,
			Arguments:       body,
			Env:             sb.Env,
			ContinueOnError: sb.ContinueOnError,
		})
	}

	return job, nil
}

// validateModel enforces the structural invariants that do not require the
// registry: unique names and resolvable `needs` references. Cycles are
// detected later by the graph builder.
func validateModel(model *config.Model) error {
	workflowNames := make(map[string]struct{})

	for _, wf := range model.Workflows {
		if _, dup := workflowNames[wf.Name]; dup {
			return fmt.Errorf("duplicate workflow name %q", wf.Name)
		}
		workflowNames[wf.Name] = struct{}{}

		jobNames := make(map[string]struct{})
		for _, job := range wf.Jobs {
			if _, dup := jobNames[job.Name]; dup {
				return fmt.Errorf("workflow %q: duplicate job name %q", wf.Name, job.Name)
			}
			jobNames[job.Name] = struct{}{}

			stepNames := make(map[string]struct{})
			for _, step := range job.Steps {
				key := step.RunnerType + "." + step.Name
				if _, dup := stepNames[key]; dup {
					return fmt.Errorf("workflow %q job %q: duplicate step %q", wf.Name, job.Name, key)
				}
				stepNames[key] = struct{}{}
			}
		}

		for _, job := range wf.Jobs {
			for _, need := range job.Needs {
				if need == job.Name {
					return fmt.Errorf("workflow %q: job %q needs itself", wf.Name, job.Name)
				}
				if _, ok := jobNames[need]; !ok {
					return fmt.Errorf("workflow %q: job %q needs unknown job %q", wf.Name, job.Name, need)
				}
			}
		}
	}

	return nil
}
