package llm

import (
	"context"
	"sync"
)

// ScriptedClient replays a fixed sequence of step results. It is intended for
// tests and local development without a provider key.
type ScriptedClient struct {
	mu      sync.Mutex
	Results []StepResult
	Err     error
	calls   int
}

// Step returns the next scripted result, or the last one once exhausted.
func (c *ScriptedClient) Step(ctx context.Context, req StepRequest) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return StepResult{}, c.Err
	}
	idx := c.calls
	c.calls++
	if len(c.Results) == 0 {
		return StepResult{Content: "ok"}, nil
	}
	if idx >= len(c.Results) {
		idx = len(c.Results) - 1
	}
	return c.Results[idx], nil
}

// Calls reports how many steps have been requested.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
