package chat

import (
	"context"
	"encoding/json"

	"resume-studio-backend/internal/llm"
	"resume-studio-backend/internal/updates"
)

// Tool pairs a model-visible spec with the function that executes it.
type Tool struct {
	Spec llm.ToolSpec
	Run  func(ctx context.Context, args json.RawMessage) (Outcome, error)
}

// Outcome is what a tool produced. Result is serialized back to the model
// as the tool message. Updated is set when the tool mutated a document and
// carries the full post-mutation snapshot.
type Outcome struct {
	Result  any
	Updated json.RawMessage
	DocID   string
	Kind    updates.Kind
}
