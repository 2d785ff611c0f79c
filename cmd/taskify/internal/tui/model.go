// Package tui is the interactive terminal client: a prompt box, a spinner
// while the relay works, and replies rendered as markdown into the
// terminal scrollback.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/germanamz/taskify/cmd/taskify/internal/styles"
)

// replyMsg is the outcome of one relay round trip.
type replyMsg struct {
	reply Reply
	err   error
}

// Options configure the client.
type Options struct {
	Sender Sender
	// Dir is where /save writes files without an explicit path.
	Dir string
	// Target names the relay in the status line.
	Target string
}

// Model is the bubbletea model of the client.
type Model struct {
	ctx     context.Context
	opts    Options
	session *Session
	input   inputModel
	spinner spinner.Model
	render  renderer
	busy    bool
	width   int
	cancel  context.CancelFunc
}

// New builds the client model. ctx bounds every relay call.
func New(ctx context.Context, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		ctx:     ctx,
		opts:    opts,
		session: NewSession(),
		input:   newInput(),
		spinner: sp,
		render:  newRenderer(0),
	}
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Session exposes the conversation state.
func (m Model) Session() *Session { return m.session }

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.Println(styles.Dim.Render("Taskify.ai · "+m.opts.Target+" · /help for commands")),
		m.input.enable(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.setWidth(msg.Width)
		m.render = newRenderer(min(msg.Width-4, 120))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.busy && m.cancel != nil {
				m.cancel()
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyEsc:
			if m.busy && m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}

	case submitMsg:
		return m.submit(msg.text)

	case replyMsg:
		return m.finish(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if cmd, ok := parseCommand(text); ok {
		res := run(m.session, cmd, m.opts.Dir)
		if res.quit {
			return m, tea.Quit
		}
		if res.failed {
			return m, tea.Println(m.render.err(res.output))
		}
		return m, tea.Println(m.render.notice(res.output))
	}

	turns := m.session.Ask(text)
	m.busy = true
	m.input.disable()

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	send := func() tea.Msg {
		defer cancel()
		r, err := m.opts.Sender.Send(ctx, turns)
		return replyMsg{reply: r, err: err}
	}

	return m, tea.Batch(tea.Println(m.render.user(text)), m.spinner.Tick, send)
}

func (m Model) finish(msg replyMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.cancel = nil
	enable := m.input.enable()

	if msg.err != nil {
		m.session.Retract()
		return m, tea.Batch(tea.Println(m.render.err(msg.err.Error())), enable)
	}

	m.session.Answer(msg.reply)
	out := m.render.reply(msg.reply, len(m.session.Blocks()))

	return m, tea.Batch(tea.Println(out), enable)
}

func (m Model) View() string {
	var sb strings.Builder

	if m.busy {
		fmt.Fprintf(&sb, "  %s %s\n", m.spinner.View(), styles.Spinner.Render("thinking... (esc to cancel)"))
	}

	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Status.Render(m.status()))

	return sb.String()
}

func (m Model) status() string {
	parts := []string{m.opts.Target}
	if d := m.session.Depth(); d > 0 {
		parts = append(parts, fmt.Sprintf("subchat depth %d", d))
	}
	if last := m.session.Last(); last.Model != "" {
		parts = append(parts, "last model "+last.Model)
	}
	return strings.Join(parts, " · ")
}
