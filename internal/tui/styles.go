package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the pre-computed lipgloss styles for the chat screen.
type Styles struct {
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Reasoning lipgloss.Style
	Search    lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Prompt    lipgloss.Style
}

// DefaultStyles returns the 256-color palette used by the TUI.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("219")).Bold(true),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Reasoning: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		Search: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("39")).
			PaddingLeft(1),
		System:  lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Bold(true),
	}
}
