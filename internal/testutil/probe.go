package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ErrProbeFailed is the error a probe step returns when asked to fail.
var ErrProbeFailed = errors.New("probe failed as instructed")

// ExecutionRecord holds the start and end times for a single probe execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// ProbeModule registers a "probe" runner for tests. Each probe step records
// its execution under its `id` argument, optionally sleeps, and optionally
// fails with ErrProbeFailed.
type ProbeModule struct {
	mu         sync.Mutex
	executions map[string]*ExecutionRecord
	order      []string
}

// NewProbeModule creates a fresh probe recorder.
func NewProbeModule() *ProbeModule {
	return &ProbeModule{executions: make(map[string]*ExecutionRecord)}
}

// probeInput defines the arguments of the probe runner.
type probeInput struct {
	ID      string `hcl:"id,optional"`
	Fail    bool   `hcl:"fail,optional"`
	SleepMs int    `hcl:"sleep_ms,optional"`
}

// Register implements the registry.Module interface.
func (m *ProbeModule) Register(r *registry.Registry) {
	r.RegisterRunner("probe", &registry.RegisteredRunner{
		Description: "Test probe: records execution, optionally sleeps or fails.",
		NewInput:    func() any { return new(probeInput) },
		Fn: func(ctx context.Context, deps *registry.StepDeps, input *probeInput) (cty.Value, error) {
			start := time.Now()
			if input.SleepMs > 0 {
				select {
				case <-time.After(time.Duration(input.SleepMs) * time.Millisecond):
				case <-ctx.Done():
					return cty.NilVal, ctx.Err()
				}
			}

			m.mu.Lock()
			m.executions[input.ID] = &ExecutionRecord{Start: start, End: time.Now()}
			m.order = append(m.order, input.ID)
			m.mu.Unlock()

			if input.Fail {
				return cty.NilVal, ErrProbeFailed
			}
			return cty.ObjectVal(map[string]cty.Value{
				"id": cty.StringVal(input.ID),
			}), nil
		},
	})
}

// Executed reports whether a probe with the given id ran.
func (m *ProbeModule) Executed(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.executions[id]
	return ok
}

// Execution returns the record for id, or nil.
func (m *ProbeModule) Execution(id string) *ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executions[id]
}

// Order returns the completion order of all executed probes.
func (m *ProbeModule) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}
