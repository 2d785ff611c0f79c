// Package styles holds the terminal client palette and styles.
package styles

import "github.com/charmbracelet/lipgloss"

// GitHub terminal palette.
var (
	ColorFg      = lipgloss.Color("#c9d1d9")
	ColorMuted   = lipgloss.Color("#8b949e")
	ColorAccent  = lipgloss.Color("#58a6ff")
	ColorError   = lipgloss.Color("#f85149")
	ColorSuccess = lipgloss.Color("#3fb950")
	ColorMagenta = lipgloss.Color("#bc8cff")
)

var (
	UserPrefix   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	AnswerPrefix = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	ModelLabel   = lipgloss.NewStyle().Italic(true).Foreground(ColorMuted)
	Spinner      = lipgloss.NewStyle().Foreground(ColorMagenta)
	Dim          = lipgloss.NewStyle().Foreground(ColorMuted)
	Status       = lipgloss.NewStyle().Foreground(ColorMuted).PaddingLeft(1)

	ErrorBlock = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(ColorError).
			Foreground(ColorError)

	Notice = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted)

	FocusedBorder  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorAccent)
	DisabledBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted)
)
