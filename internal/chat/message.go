package chat

import (
	"encoding/json"
	"errors"
	"fmt"

	"resume-studio-backend/internal/llm"
)

// ErrBadMessages marks request bodies whose messages field cannot feed the
// model. It is always rejected before any model call.
var ErrBadMessages = errors.New("messages must be a non-empty array")

type inboundMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// parseMessages validates and converts the raw messages field of a chat
// request. Only user, assistant, and system roles are accepted; tool
// messages are produced server-side.
func parseMessages(raw json.RawMessage) ([]llm.Message, error) {
	if len(raw) == 0 {
		return nil, ErrBadMessages
	}
	var inbound []inboundMessage
	if err := json.Unmarshal(raw, &inbound); err != nil {
		return nil, ErrBadMessages
	}
	if len(inbound) == 0 {
		return nil, ErrBadMessages
	}

	out := make([]llm.Message, 0, len(inbound))
	for i, m := range inbound {
		switch m.Role {
		case llm.RoleUser, llm.RoleAssistant, llm.RoleSystem:
		default:
			return nil, fmt.Errorf("messages[%d]: unsupported role %q", i, m.Role)
		}
		if m.Content == "" {
			return nil, fmt.Errorf("messages[%d]: content is required", i)
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}
