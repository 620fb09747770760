package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles headings and tool names.
	HeaderStyle = lipgloss.NewStyle().Bold(true)
	// FaintStyle styles secondary detail lines.
	FaintStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		// Terminal states
		"installed": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"ready":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"none":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Active states
		"checking_for_update": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"downloading":         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Skipped / warning
		"missing": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Error
		"failed": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"error":  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
