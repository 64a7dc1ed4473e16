package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/dag"
	"github.com/vk/checkgrid/internal/report"
)

// Run executes every workflow that reacts to the configured event and
// renders the summary. It returns a non-nil error when any job failed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	a.summaries = nil
	var runErrs []error
	matched := 0

	for _, wf := range a.model.Workflows {
		if !wf.ReactsTo(a.config.Event) {
			a.logger.Info("Workflow does not react to event, skipping.",
				"workflow", wf.Name, "event", a.config.Event, "on", wf.On)
			continue
		}
		matched++

		a.logger.Debug("Building dependency graph.", "workflow", wf.Name)
		graph, err := dag.Build(ctx, wf)
		if err != nil {
			return fmt.Errorf("failed to build dependency graph: %w", err)
		}
		a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

		jobRunner := &dag.JobRunner{
			Registry:    a.registry,
			Commands:    &command.Runner{},
			BaseEnv:     os.Environ(),
			WorkflowEnv: wf.Env,
			WorkDir:     a.config.WorkDir,
		}

		a.logger.Info("🚀 Starting concurrent execution.",
			"workflow", wf.Name, "jobs", len(graph.Nodes), "workers", a.config.WorkerCount)
		exec := dag.New(graph, a.config.WorkerCount, a.config.FailFast, jobRunner)

		start := time.Now()
		execErr := exec.Run(ctx)
		summary := &report.Summary{
			Workflow: wf.Name,
			Event:    a.config.Event,
			Started:  start,
			Duration: time.Since(start),
			Jobs:     graph.Results(wf),
		}
		a.summaries = append(a.summaries, summary)

		report.Render(a.outW, summary)

		if execErr != nil {
			runErrs = append(runErrs, fmt.Errorf("workflow %q: %w", wf.Name, execErr))
		}
		a.logger.Info("🏁 Workflow finished.", "workflow", wf.Name, "failed", summary.Failed())
	}

	if matched == 0 {
		a.logger.Info("No workflow reacts to the event, nothing to run.", "event", a.config.Event)
		return nil
	}

	if a.config.ResultsPath != "" {
		if err := report.WriteYAML(a.config.ResultsPath, a.summaries); err != nil {
			return err
		}
		a.logger.Debug("Results file written.", "path", a.config.ResultsPath)
	}

	a.logger.Debug("App.Run method finished.")
	return errors.Join(runErrs...)
}
