package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	FocusLabel  lipgloss.Style
	Select      lipgloss.Style
	FocusSelect lipgloss.Style
	Dim         lipgloss.Style
	Status      lipgloss.Style
	Help        lipgloss.Style
	Main        lipgloss.Style
	Loading     lipgloss.Style
	Empty       lipgloss.Style
	Card        lipgloss.Style
	CardTitle   lipgloss.Style
	CardURL     lipgloss.Style
	Summary     lipgloss.Style
	Keywords    lipgloss.Style
	Content     lipgloss.Style
	Highlight   lipgloss.Style

	// Hyperlinks renders card titles as OSC 8 terminal links
	Hyperlinks bool
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		FocusLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Select:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		FocusSelect: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Dim:         lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(0, 2),
		Loading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Card: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("99")).
			PaddingLeft(1).
			MarginBottom(1),
		CardTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		CardURL:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Underline(true),
		Summary:   lipgloss.NewStyle(),
		Keywords:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Italic(true),
		Content: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(2),
		Highlight:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Hyperlinks: true,
	}
}
