package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/checkgrid/internal/config"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/report"
)

// Executor runs a graph's jobs on a pool of workers.
type Executor struct {
	Graph      *Graph
	numWorkers int
	// failFast cancels every in-flight and pending job on the first
	// failure. When false (the default), a failure only skips the failed
	// job's transitive dependents; unrelated jobs keep running.
	failFast bool
	jobs     JobExecutor

	wg sync.WaitGroup
}

// JobExecutor runs one job to completion and reports its result. The error
// is non-nil when the job failed.
type JobExecutor interface {
	RunJob(ctx context.Context, job *config.Job) (*report.JobResult, error)
}

// New creates an executor for the given graph.
func New(graph *Graph, workers int, failFast bool, jobs JobExecutor) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		Graph:      graph,
		numWorkers: workers,
		failFast:   failFast,
		jobs:       jobs,
	}
}

// Run executes the entire graph concurrently and returns an error if any job
// failed. It respects the cancellation signal from the provided context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *Node, len(e.Graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root nodes...")
	rootNodeCount := 0
	for _, node := range e.Graph.Nodes {
		if node.depCount.Load() == 0 {
			readyChan <- node
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	e.wg.Add(len(e.Graph.Nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)

	return e.foldErrors(ctx)
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", node.ID)

		if ctx.Err() != nil {
			node.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping job.")
				node.SetState(Failed)
				node.Err = ctx.Err()
				node.Result = &report.JobResult{
					Name:   node.Job.Name,
					Status: report.StatusSkipped,
					Error:  ctx.Err().Error(),
				}
				// Dependents of a canceled node will never reach the ready
				// channel; they must be accounted here or wg.Wait hangs.
				e.skipDependents(ctx, node)
				e.wg.Done()
			})
			continue
		}

		workerLogger.Debug("Worker picked up job.")
		node.SetState(Running)

		result, err := e.jobs.RunJob(ctx, node.Job)
		node.Result = result

		if err != nil && node.Job.ContinueOnError {
			workerLogger.Warn("Job failed but is marked continue_on_error.", "error", err)
			result.AllowedFailure = true
			err = nil
		}

		if err != nil {
			workerLogger.Error("Job failed.", "error", err)
			node.SetState(Failed)
			node.Err = err
			if e.failFast {
				cancel()
			}
			e.skipDependents(ctx, node)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Job succeeded.")
		node.SetState(Done)

		for _, dependent := range node.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent job.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skipDependents recursively marks all downstream nodes as failed and
// decrements the WaitGroup for each.
func (e *Executor) skipDependents(ctx context.Context, node *Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range node.Dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping job due to upstream failure.", "nodeID", dependent.ID, "dependency", node.ID)
			dependent.SetState(Failed)
			dependent.Err = fmt.Errorf("skipped due to upstream failure of '%s'", node.ID)
			dependent.Result = &report.JobResult{
				Name:   dependent.Job.Name,
				Status: report.StatusSkipped,
				Error:  dependent.Err.Error(),
			}
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		})
	}
}

// foldErrors walks the completed graph and distills one error for the run:
// the first real failure, with every failed job named. Skip markers and
// cancellation are symptoms, not causes, and are excluded.
func (e *Executor) foldErrors(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var failedNodes []string
	var rootCauseError error
	for _, node := range e.Graph.Nodes {
		if node.State() != Failed {
			continue
		}
		logger.Error("Job failed execution.", "nodeID", node.ID, "error", node.Err)
		if node.Err != nil && !strings.HasPrefix(node.Err.Error(), "skipped") && !errors.Is(node.Err, context.Canceled) {
			failedNodes = append(failedNodes, node.ID)
			if rootCauseError == nil {
				rootCauseError = node.Err
			}
		}
	}

	if rootCauseError != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}
	return nil
}
