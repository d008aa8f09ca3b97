package chat

// Event stream types emitted over SSE during a chat exchange.
const (
	EventMessageDelta    = "message.delta"
	EventToolCall        = "tool.call"
	EventToolResult      = "tool.result"
	EventDocumentUpdated = "document.updated"
	EventDone            = "done"
	EventError           = "error"
)

// Event is one server-sent increment of a chat stream.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// DoneReason values carried by the terminal done event.
const (
	DoneCompleted = "completed"
	DoneMaxSteps  = "max_steps"
)
