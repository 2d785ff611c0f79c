package chat

import (
	"testing"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFork(t *testing.T) {
	parent := New(
		message.New(role.User, "write a sort function"),
		message.New(role.Assistant, "here it is"),
	)

	sub := Fork(parent)

	require.Equal(t, 1, sub.Len())
	first := sub.At(0)
	assert.Equal(t, role.System, first.Role)
	assert.Contains(t, first.Content, "User: write a sort function\nAssistant: here it is")
	assert.Contains(t, first.Content, "subchat")
	assert.Same(t, parent, sub.Parent())
}

func TestFork_DoesNotShareMessages(t *testing.T) {
	parent := New(message.New(role.User, "hello"))
	sub := Fork(parent)

	sub.Append(message.New(role.User, "follow-up"))

	assert.Equal(t, 1, parent.Len())
	assert.Equal(t, 2, sub.Len())
}

func TestFork_EmptyParent(t *testing.T) {
	sub := Fork(New())

	assert.Equal(t, 0, sub.Len())
	assert.NotNil(t, sub.Parent())
}
