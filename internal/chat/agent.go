package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"resume-studio-backend/internal/llm"
	"resume-studio-backend/internal/shared/metrics"
	"resume-studio-backend/internal/shared/telemetry"
	"resume-studio-backend/internal/updates"
)

const (
	defaultMaxSteps = 10
	hardMaxSteps    = 15
)

// Runner drives the tool-calling loop for one chat exchange. Each step is
// one model call; a step that returns tool calls has them executed and the
// results appended before the next step. The loop ends when the model
// answers without tools, the step cap is reached, or the context expires.
type Runner struct {
	Client   llm.Client
	MaxSteps int

	// OnUpdate is invoked after a tool mutates a document, with the full
	// post-mutation snapshot. Used to publish onto the update bus.
	OnUpdate func(kind updates.Kind, docID string, doc json.RawMessage)
}

func (r *Runner) cap() int {
	n := r.MaxSteps
	if n <= 0 {
		n = defaultMaxSteps
	}
	if n > hardMaxSteps {
		n = hardMaxSteps
	}
	return n
}

// Run executes the loop, pushing events through emit as they happen.
// It returns the number of model calls made. A nil error does not mean the
// model answered; it means the loop terminated without a fault (the cap
// counts as a normal termination).
func (r *Runner) Run(ctx context.Context, messages []llm.Message, tools []Tool, emit func(Event)) (int, error) {
	byName := make(map[string]Tool, len(tools))
	specs := make([]llm.ToolSpec, 0, len(tools))
	for _, t := range tools {
		byName[t.Spec.Name] = t
		specs = append(specs, t.Spec)
	}

	convo := messages
	max := r.cap()

	for step := 1; step <= max; step++ {
		if err := ctx.Err(); err != nil {
			return step - 1, err
		}

		res, err := r.Client.Step(ctx, llm.StepRequest{Messages: convo, Tools: specs})
		if err != nil {
			return step, fmt.Errorf("chat step %d: %w", step, err)
		}

		if res.Content != "" {
			emit(Event{Type: EventMessageDelta, Data: map[string]any{"content": res.Content}})
		}

		if len(res.ToolCalls) == 0 {
			emit(Event{Type: EventDone, Data: map[string]any{"reason": DoneCompleted, "steps": step}})
			return step, nil
		}

		convo = append(convo, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   res.Content,
			ToolCalls: res.ToolCalls,
		})

		for _, tc := range res.ToolCalls {
			convo = append(convo, r.execute(ctx, byName, tc, emit))
		}
	}

	emit(Event{Type: EventDone, Data: map[string]any{"reason": DoneMaxSteps, "steps": max}})
	return max, nil
}

func (r *Runner) execute(ctx context.Context, byName map[string]Tool, tc llm.ToolCall, emit func(Event)) llm.Message {
	emit(Event{Type: EventToolCall, Data: map[string]any{"id": tc.ID, "name": tc.Name}})
	metrics.IncToolCalls(1)

	var result any
	tool, ok := byName[tc.Name]
	if !ok {
		result = map[string]any{"error": fmt.Sprintf("unknown tool %q", tc.Name)}
	} else {
		outcome, err := tool.Run(ctx, tc.Arguments)
		if err != nil {
			// Tool failures go back to the model so it can correct itself.
			result = map[string]any{"error": err.Error()}
			telemetry.Warn("chat.tool_failed", map[string]any{
				"tool":  tc.Name,
				"error": err.Error(),
			})
		} else {
			result = outcome.Result
			if outcome.Updated != nil {
				metrics.IncDocumentMutations()
				emit(Event{
					Type: EventDocumentUpdated,
					Data: map[string]any{
						"kind":     string(outcome.Kind),
						"id":       outcome.DocID,
						"document": json.RawMessage(outcome.Updated),
					},
				})
				if r.OnUpdate != nil {
					r.OnUpdate(outcome.Kind, outcome.DocID, outcome.Updated)
				}
			}
		}
	}

	emit(Event{Type: EventToolResult, Data: map[string]any{"id": tc.ID, "name": tc.Name, "result": result}})

	content, err := json.Marshal(result)
	if err != nil {
		content = []byte(`{"error":"tool result not serializable"}`)
	}
	return llm.Message{
		Role:       llm.RoleTool,
		Content:    string(content),
		ToolCallID: tc.ID,
		Name:       tc.Name,
	}
}
