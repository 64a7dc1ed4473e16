// Package webhook posts a JSON payload to an HTTP endpoint, for CI status
// notifications from inside a workflow (typically a final job that needs
// every other job).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const defaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the webhook runner.
type Input struct {
	URL     string            `hcl:"url"`
	Method  string            `hcl:"method,optional"`
	Payload map[string]string `hcl:"payload,optional"`
	Timeout string            `hcl:"timeout,optional"`
}

// OnRunWebhook is the handler for the 'webhook' runner.
func OnRunWebhook(ctx context.Context, deps *registry.StepDeps, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	method := input.Method
	if method == "" {
		method = http.MethodPost
	}

	timeout := defaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
		}
		timeout = d
	}

	body, err := json.Marshal(input.Payload)
	if err != nil {
		return cty.NilVal, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, input.URL, bytes.NewReader(body))
	if err != nil {
		return cty.NilVal, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return cty.NilVal, fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return cty.NilVal, fmt.Errorf("webhook endpoint returned %s", resp.Status)
	}

	logger.Debug("Webhook delivered.", "url", input.URL, "status", resp.StatusCode)
	return cty.ObjectVal(map[string]cty.Value{
		"status": cty.NumberIntVal(int64(resp.StatusCode)),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("webhook", &registry.RegisteredRunner{
		Description: "POST a JSON payload to an HTTP endpoint.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunWebhook,
	})
}
