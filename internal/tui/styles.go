package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorMuted    = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	colorError    = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F87"}
	colorSuccess  = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#50FA7B"}
	colorSelected = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#303030"}

	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Width(12)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	toastStyle    = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(colorSelected).Bold(true)

	buttonStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	activeButtonStyle = buttonStyle.Foreground(colorAccent).Bold(true)

	// Alerts and the logout dialog share one box.
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)
