package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/config"
)

func workflowOf(jobs ...*config.Job) *config.Workflow {
	return &config.Workflow{Name: "test", Jobs: jobs}
}

func TestBuild_LinksNeedsEdges(t *testing.T) {
	wf := workflowOf(
		&config.Job{Name: "lint"},
		&config.Job{Name: "report", Needs: []string{"lint"}},
	)

	graph, err := Build(context.Background(), wf)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)

	reportNode := graph.Nodes["job.report"]
	require.NotNil(t, reportNode)
	assert.Contains(t, reportNode.Deps, "job.lint")
	assert.Equal(t, int32(1), reportNode.depCount.Load())

	lintNode := graph.Nodes["job.lint"]
	assert.Contains(t, lintNode.Dependents, "job.report")
	assert.Equal(t, int32(0), lintNode.depCount.Load())
}

func TestBuild_RejectsCycle(t *testing.T) {
	wf := workflowOf(
		&config.Job{Name: "a", Needs: []string{"b"}},
		&config.Job{Name: "b", Needs: []string{"a"}},
	)

	_, err := Build(context.Background(), wf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestAddEdge_RejectsSelfReference(t *testing.T) {
	graph := &Graph{Nodes: map[string]*Node{
		"job.a": {ID: "job.a", Deps: map[string]*Node{}, Dependents: map[string]*Node{}},
	}}

	err := graph.AddEdge("job.a", "job.a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "self-referential")
}

func TestAddEdge_RejectsUnknownNodes(t *testing.T) {
	graph := &Graph{Nodes: map[string]*Node{
		"job.a": {ID: "job.a", Deps: map[string]*Node{}, Dependents: map[string]*Node{}},
	}}

	assert.Error(t, graph.AddEdge("job.missing", "job.a"))
	assert.Error(t, graph.AddEdge("job.a", "job.missing"))
}
