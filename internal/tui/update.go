package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case SchedulesLoadedMsg:
		m.loading = false
		m.converter = msg.Converter
		m.dates = msg.Converter.Dates()
		m.dateIdx = len(m.dates)
		return m, nil

	case ConversionCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			m.result = nil
		} else {
			m.err = nil
			m.result = msg.Result
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	return m, cmd
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.currentScene == SceneConverter {
			return m, tea.Quit
		}
		return m.navigate(SceneConverter)
	case "f1":
		return m.navigate(SceneHelp)
	case "f2":
		return m.navigate(SceneSchedules)
	}

	if m.loading || m.converter == nil {
		return m, nil
	}
	if m.currentScene != SceneConverter {
		// schedules and help only react to date changes and navigation
		return m.handleDateKeys(msg)
	}

	switch msg.String() {
	case "tab":
		m.kindIdx = (m.kindIdx + 1) % len(inputKinds)
		return m, nil
	case "shift+tab":
		m.kindIdx = (m.kindIdx + len(inputKinds) - 1) % len(inputKinds)
		return m, nil
	case "up", "down":
		return m.handleDateKeys(msg)
	case "enter":
		req, err := m.request()
		if err != nil {
			m.err = err
			m.result = nil
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Converting..."
		return m, convertCmd(m.converter, req)
	}

	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	return m, cmd
}

// handleDateKeys moves the date selection; the slot past the last date is "today"
func (m Model) handleDateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slots := len(m.dates) + 1
	switch msg.String() {
	case "up":
		m.dateIdx = (m.dateIdx + slots - 1) % slots
	case "down":
		m.dateIdx = (m.dateIdx + 1) % slots
	}
	return m, nil
}

func (m Model) navigate(scene Scene) (tea.Model, tea.Cmd) {
	m.previousScene = m.currentScene
	m.currentScene = scene
	return m, nil
}
