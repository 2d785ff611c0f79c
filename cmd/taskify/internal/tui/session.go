package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/germanamz/taskify/pkg/chats/chat"
	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
	"github.com/germanamz/taskify/pkg/codeblock"
)

// Reply is one generated answer.
type Reply struct {
	Text  string
	Model string
}

// Sender relays a conversation and returns the answer.
type Sender interface {
	Send(ctx context.Context, turns []message.Message) (Reply, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, turns []message.Message) (Reply, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, turns []message.Message) (Reply, error) {
	return f(ctx, turns)
}

// ErrNoParent is returned by Back on a top-level chat.
var ErrNoParent = errors.New("already in the main chat")

// Session is the in-memory conversation state of the terminal client: the
// active chat, its ancestors, and the latest reply.
type Session struct {
	current *chat.Chat
	last    Reply
}

// NewSession starts with an empty top-level chat.
func NewSession() *Session {
	return &Session{current: chat.New()}
}

// Chat returns the active chat.
func (s *Session) Chat() *chat.Chat { return s.current }

// Depth is 0 for the main chat and grows by one per nested subchat.
func (s *Session) Depth() int {
	d := 0
	for c := s.current.Parent(); c != nil; c = c.Parent() {
		d++
	}
	return d
}

// Ask appends a user turn and returns the turns to send.
func (s *Session) Ask(text string) []message.Message {
	s.current.Append(message.New(role.User, text))
	return s.current.Messages()
}

// Answer records a reply in the active chat.
func (s *Session) Answer(r Reply) {
	s.current.Append(message.New(role.Assistant, r.Text))
	s.last = r
}

// Retract removes a trailing user turn left without an answer, so that a
// retry does not send it twice.
func (s *Session) Retract() {
	if m, ok := s.current.Last(); ok && m.Role == role.User {
		s.current.DropLast()
	}
}

// Last returns the latest reply.
func (s *Session) Last() Reply { return s.last }

// Fork enters a subchat seeded with the active chat's transcript.
func (s *Session) Fork() {
	s.current = chat.Fork(s.current)
	s.last = Reply{}
}

// Back returns to the parent chat.
func (s *Session) Back() error {
	p := s.current.Parent()
	if p == nil {
		return ErrNoParent
	}
	s.current = p
	s.last = lastReply(p)
	return nil
}

// Clear empties the active chat. A subchat is re-seeded from its parent.
func (s *Session) Clear() {
	if p := s.current.Parent(); p != nil {
		s.current = chat.Fork(p)
	} else {
		s.current = chat.New()
	}
	s.last = Reply{}
}

// Blocks returns the code blocks of the latest reply.
func (s *Session) Blocks() []codeblock.Block {
	return codeblock.Extract(s.last.Text)
}

// Save writes code block n (1-based) of the latest reply. An empty path
// uses the block's descriptive file name in dir; a path naming a directory
// places that name inside it.
func (s *Session) Save(n int, path, dir string) (string, error) {
	blocks := s.Blocks()
	if len(blocks) == 0 {
		return "", errors.New("the last reply has no code blocks")
	}
	if n < 1 || n > len(blocks) {
		return "", fmt.Errorf("block %d out of range 1-%d", n, len(blocks))
	}

	b := blocks[n-1]
	name := codeblock.Filename(b, n)

	switch {
	case path == "":
		path = filepath.Join(dir, name)
	case !filepath.IsAbs(path):
		path = filepath.Join(dir, path)
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, name)
	}

	if err := os.WriteFile(path, []byte(b.Code+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("save block %d: %w", n, err)
	}

	return path, nil
}

func lastReply(c *chat.Chat) Reply {
	m, ok := c.LastOf(role.Assistant)
	if !ok {
		return Reply{}
	}
	return Reply{Text: m.Content}
}
