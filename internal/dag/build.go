package dag

import (
	"context"
	"fmt"

	"github.com/vk/checkgrid/internal/config"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/report"
)

// Build constructs a validated dependency graph for one workflow.
func Build(ctx context.Context, wf *config.Workflow) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "workflow", wf.Name)

	graph := &Graph{Nodes: make(map[string]*Node)}

	// First pass: one node per job.
	for _, job := range wf.Jobs {
		id := nodeID(job.Name)
		graph.Nodes[id] = &Node{
			ID:         id,
			Job:        job,
			Deps:       make(map[string]*Node),
			Dependents: make(map[string]*Node),
		}
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: `needs` edges.
	for _, job := range wf.Jobs {
		for _, need := range job.Needs {
			if err := graph.AddEdge(nodeID(need), nodeID(job.Name)); err != nil {
				return nil, fmt.Errorf("job %q: %w", job.Name, err)
			}
		}
	}
	logger.Debug("Build: Node linking complete.")

	// Third pass: prime the dependency counters.
	for _, node := range graph.Nodes {
		node.SetInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Graph construction successful.")

	return graph, nil
}

func nodeID(jobName string) string {
	return "job." + jobName
}

// Results collects the per-job results in workflow declaration order.
func (g *Graph) Results(wf *config.Workflow) []report.JobResult {
	results := make([]report.JobResult, 0, len(wf.Jobs))
	for _, job := range wf.Jobs {
		node, ok := g.Nodes[nodeID(job.Name)]
		if !ok || node.Result == nil {
			continue
		}
		results = append(results, *node.Result)
	}
	return results
}
