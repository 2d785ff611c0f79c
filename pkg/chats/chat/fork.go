package chat

import (
	"fmt"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
)

const subchatPreamble = `This is a subchat related to the main chat.
Main chat history:
%s

Please answer considering the information from the main chat.`

// Fork creates a subchat of parent. The subchat starts with a system turn
// carrying the parent's transcript so that replies share its context. An
// empty parent yields an empty subchat.
func Fork(parent *Chat) *Chat {
	sub := &Chat{parent: parent}

	if transcript := parent.Transcript(); transcript != "" {
		sub.Append(message.New(role.System, fmt.Sprintf(subchatPreamble, transcript)))
	}

	return sub
}

// Parent returns the chat this one was forked from, or nil for a root chat.
func (c *Chat) Parent() *Chat {
	return c.parent
}
