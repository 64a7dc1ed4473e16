package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified representation of the entire loaded configuration.
type Model struct {
	Workflows []*Workflow
}

// Workflow represents a single `workflow` block: a named set of jobs that
// reacts to a list of trigger events.
type Workflow struct {
	Name string
	// On lists the events this workflow reacts to (e.g. "push",
	// "pull_request"). An empty list means the workflow runs for any event.
	On   []string
	Env  map[string]string
	Jobs []*Job
}

// Job is one unit of scheduling. Jobs without `needs` edges run in parallel
// and share no state.
type Job struct {
	Name  string
	Needs []string
	Env   map[string]string
	// Python and Node pin an interpreter version ("3.10", "20"). The pin is
	// verified before any step of the job runs.
	Python string
	Node   string
	// Timeout bounds the whole job. Zero means no job-level timeout.
	Timeout time.Duration
	// ContinueOnError prevents a failure of this job from failing the run.
	ContinueOnError bool
	Steps           []*Step
}

// Step is a single invocation of a registered runner within a job. Steps of
// a job execute sequentially in declaration order.
type Step struct {
	RunnerType string
	Name       string
	// Arguments is the raw body of the `arguments` block. It is decoded into
	// the runner's input struct at execution time, when step outputs of
	// earlier steps are available in the evaluation context. Nil when the
	// step declares no arguments.
	Arguments       hcl.Body
	Env             map[string]string
	ContinueOnError bool
}

// ReactsTo reports whether the workflow should run for the given event.
func (w *Workflow) ReactsTo(event string) bool {
	if len(w.On) == 0 {
		return true
	}
	for _, e := range w.On {
		if e == event {
			return true
		}
	}
	return false
}

// Job returns the job with the given name, or nil.
func (w *Workflow) Job(name string) *Job {
	for _, j := range w.Jobs {
		if j.Name == name {
			return j
		}
	}
	return nil
}
