package tui

import "github.com/charmbracelet/lipgloss"

// palette picks colours for a stored theme. "system" adapts to the
// terminal background.
type palette struct {
	accent lipgloss.TerminalColor
	muted  lipgloss.TerminalColor
	border lipgloss.TerminalColor
	focus  lipgloss.TerminalColor
	errorC lipgloss.TerminalColor
}

func paletteFor(theme string) palette {
	switch theme {
	case "light":
		return palette{
			accent: lipgloss.Color("25"),
			muted:  lipgloss.Color("245"),
			border: lipgloss.Color("250"),
			focus:  lipgloss.Color("62"),
			errorC: lipgloss.Color("160"),
		}
	case "dark":
		return palette{
			accent: lipgloss.Color("12"),
			muted:  lipgloss.Color("241"),
			border: lipgloss.Color("8"),
			focus:  lipgloss.Color("105"),
			errorC: lipgloss.Color("9"),
		}
	default:
		return palette{
			accent: lipgloss.AdaptiveColor{Light: "25", Dark: "12"},
			muted:  lipgloss.AdaptiveColor{Light: "245", Dark: "241"},
			border: lipgloss.AdaptiveColor{Light: "250", Dark: "8"},
			focus:  lipgloss.AdaptiveColor{Light: "62", Dark: "105"},
			errorC: lipgloss.AdaptiveColor{Light: "160", Dark: "9"},
		}
	}
}

type styles struct {
	pane        lipgloss.Style
	focusedPane lipgloss.Style
	title       lipgloss.Style
	heading     lipgloss.Style
	selected    lipgloss.Style
	cursor      lipgloss.Style
	unread      lipgloss.Style
	muted       lipgloss.Style
	errorText   lipgloss.Style
	status      lipgloss.Style
	modal       lipgloss.Style
}

func newStyles(theme string) styles {
	p := paletteFor(theme)
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border)
	return styles{
		pane:        pane,
		focusedPane: pane.BorderForeground(p.focus),
		title:       lipgloss.NewStyle().Bold(true),
		heading:     lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		selected:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		cursor:      lipgloss.NewStyle().Bold(true).Reverse(true),
		unread:      lipgloss.NewStyle().Bold(true),
		muted:       lipgloss.NewStyle().Foreground(p.muted),
		errorText:   lipgloss.NewStyle().Foreground(p.errorC).Bold(true),
		status:      lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.focus).
			Padding(1, 2),
	}
}
