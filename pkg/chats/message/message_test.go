package message

import (
	"encoding/json"
	"testing"

	"github.com/germanamz/taskify/pkg/chats/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	msg := New(role.User, "hello")

	assert.Equal(t, role.User, msg.Role)
	assert.Equal(t, "hello", msg.Content)
}

func TestMessage_ZeroValue(t *testing.T) {
	var msg Message

	assert.Empty(t, msg.Role)
	assert.Empty(t, msg.Content)
}

func TestMessage_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(New(role.Assistant, "hi there"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"assistant","content":"hi there"}`, string(data))
}

func TestMessage_UnmarshalJSON(t *testing.T) {
	var msgs []Message
	err := json.Unmarshal([]byte(`[{"role":"system","content":"be nice"},{"role":"user","content":"hello"}]`), &msgs)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, New(role.System, "be nice"), msgs[0])
	assert.Equal(t, New(role.User, "hello"), msgs[1])
}

func TestMessage_UnmarshalJSON_UnknownRole(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"role":"tool","content":"x"}`), &msg)
	assert.EqualError(t, err, `message: role: unknown role "tool"`)
}

func TestMessage_UnmarshalJSON_MissingContent(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user"}`), &msg))
	assert.Equal(t, role.User, msg.Role)
	assert.Empty(t, msg.Content)
}
