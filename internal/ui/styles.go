package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the pre-built styles of the workbench.
type Styles struct {
	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
	Title       lipgloss.Style
	Selected    lipgloss.Style
	Folder      lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Gutter      lipgloss.Style
	Cursor      lipgloss.Style
	Popup       lipgloss.Style
	PopupItem   lipgloss.Style
	PopupDetail lipgloss.Style
	Error       lipgloss.Style
	Warning     lipgloss.Style
	Info        lipgloss.Style
	StatusBar   lipgloss.Style
	Muted       lipgloss.Style
}

// NewStyles returns the styles for a dark or light terminal background.
func NewStyles(dark bool) Styles {
	fg, muted, accent, bar := lipgloss.Color("#101F38"), lipgloss.Color("#6a737d"), lipgloss.Color("#0366d6"), lipgloss.Color("#e1e4e8")
	if dark {
		fg, muted, accent, bar = lipgloss.Color("#f2f2f2"), lipgloss.Color("#8b949e"), lipgloss.Color("#58a6ff"), lipgloss.Color("#1e2a3d")
	}

	border := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(muted)
	return Styles{
		Pane:        border,
		FocusedPane: border.BorderForeground(accent),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(muted),
		Selected:    lipgloss.NewStyle().Reverse(true),
		Folder:      lipgloss.NewStyle().Bold(true),
		Tab:         lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		ActiveTab:   lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(fg),
		Gutter:      lipgloss.NewStyle().Foreground(muted),
		Cursor:      lipgloss.NewStyle().Reverse(true),
		Popup:       lipgloss.NewStyle().Foreground(fg),
		PopupItem:   lipgloss.NewStyle().Reverse(true),
		PopupDetail: lipgloss.NewStyle().Foreground(muted),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
		Warning:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		Info:        lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")),
		StatusBar:   lipgloss.NewStyle().Background(bar).Foreground(fg),
		Muted:       lipgloss.NewStyle().Foreground(muted),
	}
}

// DetectStyles picks styles for the terminal's background. With color off,
// output is rendered without escape sequences.
func DetectStyles(color bool) Styles {
	if !color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return NewStyles(termenv.HasDarkBackground())
}
