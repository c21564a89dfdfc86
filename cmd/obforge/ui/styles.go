// Package ui renders run summaries, leaderboards and metric tables for the
// obforge CLI.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Accent      = lipgloss.Color("#8BC34A") // Lime Green
	Destructive = lipgloss.Color("#e53935") // Red
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	MutedGrey   = lipgloss.Color("#6c757d")
)

// Styles groups the lipgloss styles the renderers share.
type Styles struct {
	Title lipgloss.Style
	Bold  lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
	Good  lipgloss.Style
	Bad   lipgloss.Style
	Warn  lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Bold:  lipgloss.NewStyle().Bold(true),
		Body:  lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().Foreground(MutedGrey),
		Good:  lipgloss.NewStyle().Foreground(Accent),
		Bad:   lipgloss.NewStyle().Foreground(Destructive),
		Warn:  lipgloss.NewStyle().Foreground(Warning),
	}
}
