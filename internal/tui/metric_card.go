package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// MetricCard displays a single amount with label and optional description
type MetricCard struct {
	Label       string
	Value       string
	Description string
	Width       int
	Highlight   bool
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 26,
	}
}

// WithDescription adds a description line
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithHighlight draws the card border in the accent color
func (m *MetricCard) WithHighlight(on bool) *MetricCard {
	m.Highlight = on
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	content := MetricLabelStyle.Render(m.Label) + "\n" + MetricValueStyle.Render(m.Value)
	if m.Description != "" {
		content += "\n" + SubtitleStyle.Render(m.Description)
	}

	border := ColorBorder
	if m.Highlight {
		border = ColorAccent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// MetricGrid renders cards in rows of the given number of columns
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	var rows, current []string
	for i, card := range cards {
		current = append(current, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
