package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	phiPreamble  = "You are Taskify.ai, a helpful assistant."
	qwenPreamble = "You are a helpful assistant called Taskify.ai."
)

var (
	mistral  = Template{Kind: Mistral, Window: 10}
	dialogue = Template{Kind: Dialogue, Window: 5, Preamble: phiPreamble}
	chatml   = Template{Kind: ChatML, Window: 6, Preamble: qwenPreamble}
)

// userDelimiters maps each kind to the text that opens a user block.
var userDelimiters = map[Kind]string{
	Mistral:  "[INST] ",
	Dialogue: "Human: ",
	ChatML:   "<|im_start|>user\n",
}

func conversation(n int) []message.Message {
	msgs := make([]message.Message, 0, n)
	for i := range n {
		r := role.User
		if i%2 == 1 {
			r = role.Assistant
		}
		msgs = append(msgs, message.New(r, fmt.Sprintf("turn %d", i)))
	}
	return msgs
}

func TestFormat_Mistral(t *testing.T) {
	got, err := mistral.Format([]message.Message{
		message.New(role.System, "be brief"),
		message.New(role.User, "hello"),
		message.New(role.Assistant, "hi"),
		message.New(role.User, "how are you?"),
	})

	require.NoError(t, err)
	assert.Equal(t, "<s>[INST] be brief [/INST][INST] hello [/INST] hi </s>[INST] how are you? [/INST]", got)
}

func TestFormat_Dialogue(t *testing.T) {
	got, err := dialogue.Format([]message.Message{
		message.New(role.User, "hello"),
		message.New(role.Assistant, "hi"),
		message.New(role.User, "how are you?"),
	})

	require.NoError(t, err)
	assert.Equal(t, phiPreamble+"\n\nHuman: hello\nAssistant: hi\nHuman: how are you?\nAssistant:", got)
}

func TestFormat_ChatML(t *testing.T) {
	got, err := chatml.Format([]message.Message{
		message.New(role.User, "hello"),
	})

	require.NoError(t, err)
	assert.Equal(t,
		"<|im_start|>system\n"+qwenPreamble+"<|im_end|>\n"+
			"<|im_start|>user\nhello<|im_end|>\n"+
			"<|im_start|>assistant\n",
		got)
}

func TestFormat_SystemTurnsKept(t *testing.T) {
	turns := []message.Message{
		message.New(role.System, "main chat context"),
		message.New(role.User, "hello"),
	}

	got, err := dialogue.Format(turns)
	require.NoError(t, err)
	assert.Equal(t, phiPreamble+"\n\nmain chat context\nHuman: hello\nAssistant:", got)

	got, err = chatml.Format(turns)
	require.NoError(t, err)
	assert.Contains(t, got, "<|im_start|>system\nmain chat context<|im_end|>\n<|im_start|>user\nhello")
}

func TestFormat_EmptyConversation(t *testing.T) {
	tests := []struct {
		tmpl Template
		want string
	}{
		{mistral, "<s>"},
		{dialogue, phiPreamble + "\n\nAssistant:"},
		{chatml, "<|im_start|>system\n" + qwenPreamble + "<|im_end|>\n<|im_start|>assistant\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tmpl.Kind), func(t *testing.T) {
			got, err := tt.tmpl.Format(nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Window(t *testing.T) {
	got, err := Template{Kind: Dialogue, Window: 3}.Format(conversation(7))
	require.NoError(t, err)

	assert.Equal(t, "Human: turn 4\nAssistant: turn 5\nHuman: turn 6\nAssistant:", got)
	assert.NotContains(t, got, "turn 3")
}

func TestFormat_TrailingAssistantReappendsUser(t *testing.T) {
	got, err := Template{Kind: Dialogue, Window: 5}.Format([]message.Message{
		message.New(role.User, "question"),
		message.New(role.Assistant, "partial answer"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Human: question\nAssistant: partial answer\nHuman: question\nAssistant:", got)
}

func TestFormat_WindowCutsNewestUser(t *testing.T) {
	turns := []message.Message{
		message.New(role.User, "the real question"),
		message.New(role.Assistant, "a1"),
		message.New(role.Assistant, "a2"),
	}

	got, err := Template{Kind: ChatML, Window: 2}.Format(turns)
	require.NoError(t, err)

	assert.Equal(t,
		"<|im_start|>assistant\na1<|im_end|>\n"+
			"<|im_start|>assistant\na2<|im_end|>\n"+
			"<|im_start|>user\nthe real question<|im_end|>\n"+
			"<|im_start|>assistant\n",
		got)
}

func TestFormat_NoReappendWhenUserIsLast(t *testing.T) {
	got, err := mistral.Format([]message.Message{message.New(role.User, "once")})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(got, "once"))
}

func TestFormat_Deterministic(t *testing.T) {
	turns := conversation(9)

	for _, tmpl := range []Template{mistral, dialogue, chatml} {
		first, err := tmpl.Format(turns)
		require.NoError(t, err)

		for range 5 {
			again, err := tmpl.Format(turns)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestFormat_NewestUserIsFinalUserBlock(t *testing.T) {
	for _, tmpl := range []Template{mistral, dialogue, chatml} {
		for n := 1; n <= 14; n++ {
			turns := conversation(n)
			newest := turns[len(turns)-1]
			if newest.Role != role.User {
				newest = turns[len(turns)-2]
			}

			got, err := tmpl.Format(turns)
			require.NoError(t, err)

			delim := userDelimiters[tmpl.Kind]
			idx := strings.LastIndex(got, delim)
			require.GreaterOrEqual(t, idx, 0, "kind %s, n %d", tmpl.Kind, n)
			assert.True(t, strings.HasPrefix(got[idx+len(delim):], newest.Content),
				"kind %s, n %d: final user block should hold %q, prompt %q", tmpl.Kind, n, newest.Content, got)
		}
	}
}

func TestFormat_DoesNotMutateInput(t *testing.T) {
	turns := conversation(4)
	before := append([]message.Message(nil), turns...)

	_, err := Template{Kind: Mistral, Window: 2}.Format(turns)
	require.NoError(t, err)

	assert.Equal(t, before, turns)
}

func TestTemplate_Validate(t *testing.T) {
	err := Template{Kind: "llama", Window: 4}.Validate()
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), `unknown kind "llama"`)

	err = Template{Kind: Mistral}.Validate()
	require.ErrorIs(t, err, ErrFormat)

	assert.NoError(t, chatml.Validate())
}

func TestFormat_InvalidTemplate(t *testing.T) {
	_, err := Template{Kind: "unknown", Window: 1}.Format(conversation(1))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []Kind{ChatML, Dialogue, Mistral}, Kinds())
}
