package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/germanamz/taskify/cmd/taskify/internal/styles"
)

const (
	inputMinHeight = 1
	inputMaxHeight = 6
)

// submitMsg carries the trimmed text of a submitted input.
type submitMsg struct {
	text string
}

// inputModel wraps a textarea in a rounded border box that grows with its
// content. Enter submits, alt+enter inserts a newline.
type inputModel struct {
	textarea textarea.Model
	enabled  bool
	width    int
}

func newInput() inputModel {
	ta := textarea.New()
	ta.Placeholder = "Describe your task... (/help for commands)"
	ta.ShowLineNumbers = false
	ta.SetHeight(inputMinHeight)
	ta.CharLimit = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.BlurredStyle.Prompt = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	return inputModel{textarea: ta}
}

func (m inputModel) Update(msg tea.Msg) (inputModel, tea.Cmd) {
	if !m.enabled {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter && !k.Alt {
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" {
			return m, nil
		}
		m.textarea.Reset()
		m.textarea.SetHeight(inputMinHeight)
		return m, func() tea.Msg { return submitMsg{text: text} }
	}

	m.textarea.SetHeight(inputMaxHeight)

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)

	m.textarea.SetHeight(min(max(m.visualLines(), inputMinHeight), inputMaxHeight))

	return m, cmd
}

func (m inputModel) View() string {
	border := styles.FocusedBorder
	if !m.enabled {
		border = styles.DisabledBorder
	}

	inner := max(m.width-4, 10)
	m.textarea.SetWidth(inner)

	return border.Width(inner).Render(m.textarea.View())
}

func (m *inputModel) setWidth(w int) {
	m.width = w
	m.textarea.SetWidth(max(w-4, 10))
}

// visualLines counts hard newlines plus soft wraps at the textarea width.
func (m inputModel) visualLines() int {
	text := m.textarea.Value()
	if text == "" {
		return 1
	}

	wrap := max(m.textarea.Width(), 1)
	total := 0
	for _, line := range strings.Split(text, "\n") {
		w := runewidth.StringWidth(line)
		if w == 0 {
			total++
			continue
		}
		total += (w-1)/wrap + 1
	}
	return total
}

func (m *inputModel) enable() tea.Cmd {
	m.enabled = true
	return m.textarea.Focus()
}

func (m *inputModel) disable() {
	m.enabled = false
	m.textarea.Blur()
}
