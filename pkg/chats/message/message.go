// Package message defines a single role-tagged turn of a conversation.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/germanamz/taskify/pkg/chats/role"
)

// Message is one turn of a conversation. Order across turns is significant;
// formatters fold only the most recent ones into a prompt.
type Message struct {
	Role    role.Role `json:"role"`
	Content string    `json:"content"`
}

// New creates a Message with the given role and text content.
func New(r role.Role, content string) Message {
	return Message{Role: r, Content: content}
}

// UnmarshalJSON decodes a turn and rejects unknown roles.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r, err := role.Parse(raw.Role)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}

	m.Role = r
	m.Content = raw.Content

	return nil
}
