// Package report renders the end-of-run job summary for humans (colored
// table on the CLI) and machines (YAML results file).
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Status is the terminal state of a job or step.
type Status string

const (
	StatusPassed Status = "passed"
	// StatusFailed means a step's tool exited nonzero or errored.
	StatusFailed Status = "failed"
	// StatusSetupFailed means the job never ran its steps (runtime pin
	// unresolvable, tool missing at setup).
	StatusSetupFailed Status = "setup_failed"
	// StatusSkipped means an upstream `needs` dependency failed.
	StatusSkipped Status = "skipped"
)

// StepResult records one executed step.
type StepResult struct {
	Runner   string        `yaml:"runner"`
	Name     string        `yaml:"name"`
	Status   Status        `yaml:"status"`
	Duration time.Duration `yaml:"duration"`
	Error    string        `yaml:"error,omitempty"`
}

// JobResult records one job.
type JobResult struct {
	Name     string        `yaml:"job"`
	Status   Status        `yaml:"status"`
	Duration time.Duration `yaml:"duration"`
	// FailedStep names the step that failed the job, as "runner.name".
	FailedStep string `yaml:"failed_step,omitempty"`
	Error      string `yaml:"error,omitempty"`
	// AllowedFailure marks a failed job whose `continue_on_error` setting
	// keeps it from failing the run.
	AllowedFailure bool         `yaml:"allowed_failure,omitempty"`
	Steps          []StepResult `yaml:"steps,omitempty"`
}

// Summary is the complete outcome of one workflow run.
type Summary struct {
	Workflow string        `yaml:"workflow"`
	Event    string        `yaml:"event"`
	Started  time.Time     `yaml:"started"`
	Duration time.Duration `yaml:"duration"`
	Jobs     []JobResult   `yaml:"jobs"`
}

// Failed reports whether any job failed the run. Skipped jobs count as
// failures only through the failed job that caused the skip.
func (s *Summary) Failed() bool {
	for _, j := range s.Jobs {
		if j.AllowedFailure {
			continue
		}
		if j.Status == StatusFailed || j.Status == StatusSetupFailed {
			return true
		}
	}
	return false
}

var (
	passMark  = color.New(color.FgGreen).SprintFunc()
	failMark  = color.New(color.FgRed).SprintFunc()
	skipMark  = color.New(color.FgYellow).SprintFunc()
	faintText = color.New(color.Faint).SprintFunc()
)

func statusCell(s Status) string {
	switch s {
	case StatusPassed:
		return passMark("✔ passed")
	case StatusFailed:
		return failMark("✘ failed")
	case StatusSetupFailed:
		return failMark("✘ setup failed")
	case StatusSkipped:
		return skipMark("– skipped")
	}
	return string(s)
}

// Render writes the human-readable summary table to w.
func Render(w io.Writer, s *Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Job", "Status", "Duration", "Detail"})

	for _, job := range s.Jobs {
		detail := job.FailedStep
		if detail == "" && job.Error != "" {
			detail = job.Error
		}
		t.AppendRow(table.Row{
			job.Name,
			statusCell(job.Status),
			job.Duration.Round(time.Millisecond).String(),
			detail,
		})
	}
	t.Render()

	passed := 0
	for _, j := range s.Jobs {
		if j.Status == StatusPassed {
			passed++
		}
	}
	elapsed := strings.TrimSpace(humanize.RelTime(s.Started, s.Started.Add(s.Duration), "", ""))
	fmt.Fprintf(w, "%s\n", faintText(fmt.Sprintf("workflow %q: %d/%d jobs passed in %s (event: %s)",
		s.Workflow, passed, len(s.Jobs), elapsed, s.Event)))
}

// WriteYAML writes the machine-readable results file.
func WriteYAML(path string, summaries []*Summary) error {
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results file: %w", err)
	}
	return nil
}
