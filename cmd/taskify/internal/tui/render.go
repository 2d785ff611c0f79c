package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/germanamz/taskify/cmd/taskify/internal/styles"
)

// renderer turns replies into terminal markdown. A nil glamour renderer
// passes text through.
type renderer struct {
	md *glamour.TermRenderer
}

func newRenderer(width int) renderer {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return renderer{}
	}
	return renderer{md: r}
}

func (r renderer) markdown(text string) string {
	if r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (r renderer) user(text string) string {
	prefix := styles.UserPrefix.Render("you > ")
	pad := strings.Repeat(" ", 6)
	return "\n" + prefix + strings.ReplaceAll(text, "\n", "\n"+pad)
}

func (r renderer) reply(rep Reply, blocks int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(styles.AnswerPrefix.Render("taskify > "))
	b.WriteString("\n")
	b.WriteString(r.markdown(rep.Text))
	b.WriteString("\n")

	label := "answered by " + rep.Model
	if blocks == 1 {
		label += " · 1 code block, /code to list"
	} else if blocks > 1 {
		label += " · " + strconv.Itoa(blocks) + " code blocks, /code to list"
	}
	b.WriteString(styles.ModelLabel.Render(label))

	return b.String()
}

func (r renderer) err(text string) string {
	return styles.ErrorBlock.Render("error: " + text)
}

func (r renderer) notice(text string) string {
	return styles.Notice.Render(text)
}
