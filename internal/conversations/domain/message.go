package domain

import (
	"encoding/json"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	botPrefix  = "Bot: "
	userPrefix = "You: "
)

// Message is one turn of a conversation transcript.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ParseMessages decodes a transcript stored either as role/content objects
// or as "Bot: "/"You: " prefixed strings. Anything else becomes an assistant
// message holding its JSON text. A transcript that is not an array yields no
// messages.
func ParseMessages(raw []byte) []Message {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]Message, 0, len(items))
	for _, item := range items {
		out = append(out, parseMessage(item))
	}
	return out
}

func parseMessage(item json.RawMessage) Message {
	var text string
	if err := json.Unmarshal(item, &text); err == nil {
		switch {
		case strings.HasPrefix(text, botPrefix):
			return Message{Role: RoleAssistant, Content: strings.TrimPrefix(text, botPrefix)}
		case strings.HasPrefix(text, userPrefix):
			return Message{Role: RoleUser, Content: strings.TrimPrefix(text, userPrefix)}
		default:
			return Message{Role: RoleAssistant, Content: text}
		}
	}

	var msg Message
	if err := json.Unmarshal(item, &msg); err == nil && msg.Role != "" && msg.Content != "" {
		return msg
	}
	return Message{Role: RoleAssistant, Content: string(item)}
}

func (m Message) hasContent() bool {
	content := strings.TrimSpace(m.Content)
	return content != "" && content != "undefined" && !strings.Contains(m.Content, "[wa_template]: undefined")
}
