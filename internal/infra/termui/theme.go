package termui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Warn  lipgloss.Style
	Info  lipgloss.Style
	Help  lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().Bold(true),
		Pass:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:  lipgloss.NewStyle().Faint(true),
		Help:  lipgloss.NewStyle().Faint(true),
	}
}
