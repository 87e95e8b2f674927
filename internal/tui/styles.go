package tui

import "github.com/charmbracelet/lipgloss"

const cardWidth = 30

type styles struct {
	Title    lipgloss.Style
	Badge    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Price    lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Cursor   lipgloss.Style
}

func defaultStyles() styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(cardWidth)

	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Badge:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Price:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Card:     card,
		Selected: card.BorderForeground(lipgloss.Color("205")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Cursor: lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
	}
}
