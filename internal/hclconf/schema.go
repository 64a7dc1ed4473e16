package hclconf

import "github.com/hashicorp/hcl/v2"

// argumentsBlock captures the raw body of an `arguments` block. It is decoded
// against the runner's input struct at execution time, not at load time.
type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// stepBlock represents a `step "<runner_type>" "<name>"` block.
type stepBlock struct {
	RunnerType      string            `hcl:"runner_type,label"`
	Name            string            `hcl:"step_name,label"`
	Arguments       *argumentsBlock   `hcl:"arguments,block"`
	Env             map[string]string `hcl:"env,optional"`
	ContinueOnError bool              `hcl:"continue_on_error,optional"`
}

// jobBlock represents a `job "<name>"` block.
type jobBlock struct {
	Name            string            `hcl:"job_name,label"`
	Needs           []string          `hcl:"needs,optional"`
	Env             map[string]string `hcl:"env,optional"`
	Python          string            `hcl:"python,optional"`
	Node            string            `hcl:"node,optional"`
	Timeout         string            `hcl:"timeout,optional"`
	ContinueOnError bool              `hcl:"continue_on_error,optional"`
	Steps           []*stepBlock      `hcl:"step,block"`
}

// workflowBlock represents a top-level `workflow "<name>"` block.
type workflowBlock struct {
	Name string            `hcl:"workflow_name,label"`
	On   []string          `hcl:"on,optional"`
	Env  map[string]string `hcl:"env,optional"`
	Jobs []*jobBlock       `hcl:"job,block"`
}

// fileRoot decodes all top-level blocks of a single configuration file.
type fileRoot struct {
	Workflows []*workflowBlock `hcl:"workflow,block"`
	Remain    hcl.Body         `hcl:",remain"`
}
