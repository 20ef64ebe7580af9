package cli

import "github.com/charmbracelet/lipgloss"

// Output styles. lipgloss drops colour when stdout is not a terminal.
var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)
