package tui

import "github.com/charmbracelet/lipgloss"

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Width(18)
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
