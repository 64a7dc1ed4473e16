package dag

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/checkgrid/internal/config"
	"github.com/vk/checkgrid/internal/report"
)

// NodeState tracks a node through its lifecycle.
type NodeState int32

const (
	Pending NodeState = iota
	Running
	Done
	Failed
)

// Node is one job in the graph.
type Node struct {
	ID         string
	Job        *config.Job
	Deps       map[string]*Node
	Dependents map[string]*Node

	// depCount is decremented as dependencies complete; the node becomes
	// ready at zero.
	depCount atomic.Int32
	state    atomic.Int32

	// skipOnce guards the skip path so a node with several failed upstream
	// dependencies is only accounted for once.
	skipOnce sync.Once

	Err    error
	Result *report.JobResult
}

// State returns the node's current lifecycle state.
func (n *Node) State() NodeState {
	return NodeState(n.state.Load())
}

// SetState transitions the node's lifecycle state.
func (n *Node) SetState(s NodeState) {
	n.state.Store(int32(s))
}

// SetInitialCounters primes the dependency counter before execution starts.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
}

// DecrementDepCount marks one dependency as complete and returns the
// remaining count.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// Graph is the set of job nodes for one workflow.
type Graph struct {
	Nodes map[string]*Node
}

// AddEdge records that `to` depends on `from`. Both nodes must exist.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	fromNode, ok := g.Nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.Nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.Deps[fromID] = fromNode
	fromNode.Dependents[toID] = toNode
	return nil
}

// detectCycles checks the graph for cycles using depth-first search with the
// classic three-color marking.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.ID] {
			return nil
		}
		if temporary[n.ID] {
			return fmt.Errorf("cycle detected involving node '%s'", n.ID)
		}
		temporary[n.ID] = true

		for _, dependent := range n.Dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}

		delete(temporary, n.ID)
		permanent[n.ID] = true
		return nil
	}

	for _, n := range g.Nodes {
		if !permanent[n.ID] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
