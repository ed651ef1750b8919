package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Mode        lipgloss.Style
	Prompt      lipgloss.Style
	Row         lipgloss.Style
	SelectedRow lipgloss.Style
	TypeBadge   lipgloss.Style
	Dim         lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Mode:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Prompt: lipgloss.NewStyle().Bold(true),
		Row:    lipgloss.NewStyle(),
		SelectedRow: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
		TypeBadge: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Help:      lipgloss.NewStyle().Faint(true),
	}
}
