package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/salconv/internal/calculation"
	"github.com/rgehrsitz/salconv/internal/config"
	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/solver"
)

// inputKinds is the order the kind selector cycles through
var inputKinds = []domain.InputKind{domain.InputGross, domain.InputGrossAfterContribution, domain.InputNet}

// Model represents the entire application state
type Model struct {
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Schedule source and calculation engine
	paths     config.SchedulePaths
	options   solver.Options
	converter *calculation.Converter

	// Current selections
	amount  textinput.Model
	kindIdx int
	dates   []string
	dateIdx int // len(dates) selects "today"

	result *domain.ConversionResult

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string
}

// NewModel creates a new application model
func NewModel(paths config.SchedulePaths, options solver.Options) Model {
	amount := textinput.New()
	amount.Placeholder = "3.000,00"
	amount.Prompt = currency.Symbol + " "
	amount.CharLimit = 20
	amount.Width = 20
	amount.Focus()

	return Model{
		currentScene:   SceneConverter,
		paths:          paths,
		options:        options,
		amount:         amount,
		width:          80,
		height:         24,
		loading:        true,
		loadingMessage: "Loading schedules...",
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadSchedulesCmd(m.paths, m.options), textinput.Blink)
}

// loadSchedulesCmd returns a command that loads the schedules and builds a converter
func loadSchedulesCmd(paths config.SchedulePaths, options solver.Options) tea.Cmd {
	return func() tea.Msg {
		set, err := config.NewScheduleLoader().Load(paths)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		schedules, err := set.Build()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return SchedulesLoadedMsg{Converter: calculation.NewConverterWithOptions(schedules, options)}
	}
}

// convertCmd returns a command that runs one conversion
func convertCmd(converter *calculation.Converter, req domain.ConversionRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := converter.Convert(context.Background(), req)
		return ConversionCompleteMsg{Request: req, Result: result, Err: err}
	}
}

// Kind returns the selected input kind
func (m Model) Kind() domain.InputKind {
	return inputKinds[m.kindIdx]
}

// Date returns the selected schedule date, "" for today
func (m Model) Date() string {
	if m.dateIdx >= len(m.dates) {
		return ""
	}
	return m.dates[m.dateIdx]
}

// request builds a conversion request from the current selections
func (m Model) request() (domain.ConversionRequest, error) {
	value, err := currency.Parse(m.amount.Value())
	if err != nil {
		return domain.ConversionRequest{}, &domain.InvalidInputError{Field: string(m.Kind()), Message: fmt.Sprintf("unrecognized amount %q", m.amount.Value())}
	}

	req := domain.ConversionRequest{Date: m.Date()}
	switch m.Kind() {
	case domain.InputNet:
		req.Net = value
	case domain.InputGrossAfterContribution:
		req.GrossAfterContribution = value
	default:
		req.Gross = value
	}
	return req, nil
}

func (s Scene) String() string {
	switch s {
	case SceneConverter:
		return "Converter"
	case SceneSchedules:
		return "Schedules"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
