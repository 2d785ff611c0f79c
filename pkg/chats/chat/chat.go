// Package chat provides a mutable conversation container.
package chat

import (
	"strings"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
)

// Chat is a mutable conversation container. The zero value is ready to use.
// Chat is not safe for concurrent use; callers must synchronize externally.
type Chat struct {
	messages []message.Message
	parent   *Chat
}

// New creates a Chat pre-populated with the given messages.
func New(msgs ...message.Message) *Chat {
	return &Chat{messages: msgs}
}

// Append adds one or more messages to the conversation.
func (c *Chat) Append(msgs ...message.Message) {
	c.messages = append(c.messages, msgs...)
}

// Len returns the number of messages in the conversation.
func (c *Chat) Len() int {
	return len(c.messages)
}

// At returns the message at the given index.
// It panics if the index is out of range.
func (c *Chat) At(index int) message.Message {
	return c.messages[index]
}

// Last returns the most recent message and true, or a zero Message and false
// if the conversation is empty.
func (c *Chat) Last() (message.Message, bool) {
	if len(c.messages) == 0 {
		return message.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// DropLast removes the most recent message and returns it, or reports false
// if the conversation is empty.
func (c *Chat) DropLast() (message.Message, bool) {
	m, ok := c.Last()
	if ok {
		c.messages = c.messages[:len(c.messages)-1]
	}
	return m, ok
}

// Messages returns a copy of all messages in the conversation.
func (c *Chat) Messages() []message.Message {
	cp := make([]message.Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}

// Each iterates over messages, calling fn for each one. If fn returns false,
// iteration stops early.
func (c *Chat) Each(fn func(int, message.Message) bool) {
	for i, m := range c.messages {
		if !fn(i, m) {
			return
		}
	}
}

// Window returns a copy of the n most recent messages in order. A
// non-positive n, or one at least as large as the conversation, returns
// every message.
func (c *Chat) Window(n int) []message.Message {
	return Window(c.messages, n)
}

// Window returns a copy of the n most recent entries of msgs.
func Window(msgs []message.Message, n int) []message.Message {
	start := 0
	if n > 0 && n < len(msgs) {
		start = len(msgs) - n
	}

	cp := make([]message.Message, len(msgs)-start)
	copy(cp, msgs[start:])
	return cp
}

// LastOf returns the newest message with the given role.
func (c *Chat) LastOf(r role.Role) (message.Message, bool) {
	return LastOf(c.messages, r)
}

// LastOf returns the newest entry of msgs with the given role.
func LastOf(msgs []message.Message, r role.Role) (message.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == r {
			return msgs[i], true
		}
	}
	return message.Message{}, false
}

// SystemPrompt returns the content of the first system message, or an
// empty string if there is none.
func (c *Chat) SystemPrompt() string {
	for _, m := range c.messages {
		if m.Role == role.System {
			return m.Content
		}
	}
	return ""
}

// Transcript renders the user and assistant turns as plain
// "User:" / "Assistant:" lines. System turns are omitted.
func (c *Chat) Transcript() string {
	var b strings.Builder
	for _, m := range c.messages {
		switch m.Role {
		case role.User:
			b.WriteString("User: ")
		case role.Assistant:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
