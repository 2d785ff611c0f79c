// Package prompt renders conversations into the prompt text expected by a
// family of instruction-tuned models.
//
// Each [Kind] names one delimiter syntax. Kinds form a closed set resolved
// through a lookup table; a [Template] pairs a kind with a recency window and
// an optional preamble. Formatting is pure: identical turns and templates
// always produce identical prompts.
package prompt

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/germanamz/taskify/pkg/chats/chat"
	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
)

// ErrFormat is returned when a template cannot be rendered.
var ErrFormat = errors.New("prompt: invalid template")

// Kind identifies a prompt syntax.
type Kind string

const (
	// Mistral is the "<s>[INST] ... [/INST]" instruction syntax.
	Mistral Kind = "mistral"
	// Dialogue is a plain "Human:" / "Assistant:" transcript.
	Dialogue Kind = "dialogue"
	// ChatML is the "<|im_start|>role ... <|im_end|>" syntax.
	ChatML Kind = "chatml"
)

// syntax describes how one Kind lays out a prompt.
type syntax struct {
	open     string
	preamble func(text string) string
	turn     func(r role.Role, text string) string
	cue      string
}

var syntaxes = map[Kind]syntax{
	Mistral: {
		open:     "<s>",
		preamble: func(text string) string { return "[INST] " + text + " [/INST]" },
		turn: func(r role.Role, text string) string {
			if r == role.Assistant {
				return " " + text + " </s>"
			}
			return "[INST] " + text + " [/INST]"
		},
	},
	Dialogue: {
		preamble: func(text string) string { return text + "\n\n" },
		turn: func(r role.Role, text string) string {
			switch r {
			case role.User:
				return "Human: " + text + "\n"
			case role.Assistant:
				return "Assistant: " + text + "\n"
			default:
				return text + "\n"
			}
		},
		cue: "Assistant:",
	},
	ChatML: {
		preamble: func(text string) string { return "<|im_start|>system\n" + text + "<|im_end|>\n" },
		turn: func(r role.Role, text string) string {
			return "<|im_start|>" + r.String() + "\n" + text + "<|im_end|>\n"
		},
		cue: "<|im_start|>assistant\n",
	},
}

// Kinds returns every known prompt kind in a stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(syntaxes))
	for k := range syntaxes {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Template is the prompt layout of one model candidate.
type Template struct {
	Kind     Kind   `yaml:"kind" json:"kind"`
	Window   int    `yaml:"window" json:"window"`               // Number of most recent turns rendered.
	Preamble string `yaml:"preamble" json:"preamble,omitempty"` // Fixed text rendered before the turns.
}

// Validate reports whether the template can be rendered.
func (t Template) Validate() error {
	if _, ok := syntaxes[t.Kind]; !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrFormat, t.Kind)
	}
	if t.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %d", ErrFormat, t.Window)
	}
	return nil
}

// Format renders the most recent turns into prompt text.
//
// The newest user turn is always the final user block: when the window cut
// it off, or other turns follow it, its content is appended again right
// before the generation cue. An empty conversation renders the preamble and
// cue only.
func (t Template) Format(turns []message.Message) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	s := syntaxes[t.Kind]
	window := chat.Window(turns, t.Window)

	var b strings.Builder
	b.WriteString(s.open)

	if t.Preamble != "" {
		b.WriteString(s.preamble(t.Preamble))
	}

	for _, m := range window {
		b.WriteString(s.turn(m.Role, m.Content))
	}

	if newest, ok := chat.LastOf(turns, role.User); ok {
		if len(window) == 0 || window[len(window)-1].Role != role.User {
			b.WriteString(s.turn(role.User, newest.Content))
		}
	}

	b.WriteString(s.cue)

	return b.String(), nil
}
