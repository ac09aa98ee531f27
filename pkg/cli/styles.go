package cli

import "github.com/charmbracelet/lipgloss"

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleSubtitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleHighlight = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	stylePrompt    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// Red renders s as an error message.
func Red(s string) string { return styleError.Render(s) }

// Green renders s as a progress or success message.
func Green(s string) string { return styleSuccess.Render(s) }

// Title renders s as a banner heading.
func Title(s string) string { return styleTitle.Render(s) }

// Highlight renders s emphasized.
func Highlight(s string) string { return styleHighlight.Render(s) }
