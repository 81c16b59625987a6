package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#5B8DEF")
	colorSuccess = lipgloss.Color("#4CAF50")
	colorDanger  = lipgloss.Color("#FF6B6B")
	colorMuted   = lipgloss.Color("#888888")
	colorBorder  = lipgloss.Color("#444444")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headingStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	dangerStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	activeStyle   = lipgloss.NewStyle().Foreground(colorPrimary)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorPrimary)
	badgeStyle    = lipgloss.NewStyle().Padding(0, 1).Background(colorBorder)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	focusedPanelStyle = panelStyle.BorderForeground(colorPrimary)
)
