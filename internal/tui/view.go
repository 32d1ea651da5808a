package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/output"
)

// View renders the current state of the application
func (m Model) View() string {
	var content string
	switch {
	case m.loading && m.converter == nil:
		content = BorderStyle.Render("⠋ " + m.loadingMessage)
	case m.currentScene == SceneSchedules:
		content = m.renderSchedules()
	case m.currentScene == SceneHelp:
		content = m.renderHelp()
	default:
		content = m.renderConverter()
	}
	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	title := TitleStyle.Render("salconv - gross/net salary converter")
	breadcrumb := SubtitleStyle.Render(m.currentScene.String())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		breadcrumb,
		content,
		m.renderStatusBar(),
	)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("enter", "convert"),
		formatShortcut("tab", "amount kind"),
		formatShortcut("↑/↓", "date"),
		formatShortcut("f2", "schedules"),
		formatShortcut("f1", "help"),
		formatShortcut("esc", "back/quit"),
	}
	return StatusBarStyle.Width(m.width).Render(strings.Join(shortcuts, " • "))
}

func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func (m Model) renderConverter() string {
	var kinds []string
	for i, k := range inputKinds {
		label := kindLabel(k)
		if i == m.kindIdx {
			kinds = append(kinds, SelectedItemStyle.Render("["+label+"]"))
		} else {
			kinds = append(kinds, UnselectedItemStyle.Render(" "+label+" "))
		}
	}

	form := lipgloss.JoinVertical(
		lipgloss.Left,
		strings.Join(kinds, " "),
		"",
		"Schedule date: "+SelectedItemStyle.Render(m.dateLabel()),
		"",
		m.amount.View(),
	)

	sections := []string{BorderStyle.Render(form)}
	switch {
	case m.loading:
		sections = append(sections, SubtitleStyle.Render(m.loadingMessage))
	case m.err != nil:
		sections = append(sections, ErrorStyle.Render("Error: "+m.err.Error()))
	case m.result != nil:
		sections = append(sections, m.renderResult())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderResult() string {
	r := m.result
	contribution := currency.FormatPercent(r.ContributionRate)
	if !r.ContributionDeduction.IsZero() {
		contribution += " - " + currency.Format(r.ContributionDeduction)
	}
	cards := []*MetricCard{
		NewMetricCard("Gross", currency.Format(r.Gross)).WithHighlight(r.Input == domain.InputGross),
		NewMetricCard("INSS", currency.Format(r.ContributionAmount)).WithDescription(contribution),
		NewMetricCard("Gross after INSS", currency.Format(r.GrossAfterContribution)).WithHighlight(r.Input == domain.InputGrossAfterContribution),
		NewMetricCard("IRPF", currency.Format(r.TaxAmount)).
			WithDescription(currency.FormatPercent(r.TaxRate) + " - " + currency.Format(r.TaxDeduction)),
		NewMetricCard("Net", currency.Format(r.Net)).WithHighlight(r.Input == domain.InputNet),
	}

	columns := 3
	if m.width < 90 {
		columns = 2
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		SubtitleStyle.Render(fmt.Sprintf("Schedule in effect: %s", r.EffectiveDate)),
		MetricGrid(cards, columns),
	)
}

func (m Model) renderSchedules() string {
	if m.converter == nil {
		return ErrorStyle.Render("No schedules loaded")
	}
	view, err := output.NewScheduleView(m.converter.Schedules, m.Date())
	if err != nil {
		return ErrorStyle.Render("Error: " + err.Error())
	}
	rendered, err := output.FormatSchedules(view, "console")
	if err != nil {
		return ErrorStyle.Render("Error: " + err.Error())
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		"Schedule date: "+SelectedItemStyle.Render(m.dateLabel()),
		"",
		string(rendered),
	)
}

func (m Model) renderHelp() string {
	helpText := `
salconv converts between gross, gross after contribution and net salary
under the INSS and IRPF schedules in effect on a date.

KEYBOARD SHORTCUTS:
  tab/shift+tab  Choose which amount you are typing
  ↑/↓            Choose the schedule date (or today)
  enter          Convert
  f2             Show the schedules for the selected date
  f1             Show this help
  esc            Back, or quit from the converter
  ctrl+c         Quit

AMOUNTS:
  Both "3.000,50" and "3000.50" are accepted; "R$" is optional.
`
	return BorderStyle.Render(helpText)
}

func (m Model) dateLabel() string {
	if d := m.Date(); d != "" {
		return d
	}
	return "today"
}

func kindLabel(k domain.InputKind) string {
	switch k {
	case domain.InputNet:
		return "Net"
	case domain.InputGrossAfterContribution:
		return "Gross after INSS"
	default:
		return "Gross"
	}
}
