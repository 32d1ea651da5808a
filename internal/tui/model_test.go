package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/salconv/internal/config"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/solver"
)

func loadedModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(config.SchedulePaths{}, solver.DefaultOptions())
	msg := loadSchedulesCmd(m.paths, m.options)()
	require.IsType(t, SchedulesLoadedMsg{}, msg)
	return update(t, m, msg)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func press(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func TestModel_LoadsSchedules(t *testing.T) {
	m := NewModel(config.SchedulePaths{}, solver.DefaultOptions())
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "Loading schedules")

	m = loadedModel(t)
	assert.False(t, m.loading)
	assert.Equal(t, []string{"2012", "2013", "2014", "2015", "2015-04"}, m.dates)
	assert.Equal(t, "", m.Date(), "today is selected first")
	assert.Equal(t, domain.InputGross, m.Kind())
}

func TestModel_LoadError(t *testing.T) {
	m := NewModel(config.SchedulePaths{File: "missing.yaml"}, solver.DefaultOptions())
	m = update(t, m, loadSchedulesCmd(m.paths, m.options)())
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "Error:")

	m, _ = press(t, m, tea.KeyF2)
	assert.Contains(t, m.View(), "No schedules loaded")
}

func TestModel_SelectionKeys(t *testing.T) {
	m := loadedModel(t)

	m, _ = press(t, m, tea.KeyUp)
	assert.Equal(t, "2015-04", m.Date())
	m, _ = press(t, m, tea.KeyUp)
	assert.Equal(t, "2015", m.Date())
	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyDown)
	assert.Equal(t, "", m.Date())

	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, domain.InputGrossAfterContribution, m.Kind())
	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, domain.InputNet, m.Kind())
	m, _ = press(t, m, tea.KeyShiftTab)
	assert.Equal(t, domain.InputGrossAfterContribution, m.Kind())
}

func TestModel_Convert(t *testing.T) {
	m := loadedModel(t)
	for i := 0; i < 3; i++ {
		m, _ = press(t, m, tea.KeyUp)
	}
	require.Equal(t, "2014", m.Date())

	m, _ = press(t, m, tea.KeyTab)
	m, _ = press(t, m, tea.KeyTab)
	require.Equal(t, domain.InputNet, m.Kind())
	m.amount.SetValue("2.603,83")

	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m = update(t, m, cmd())
	require.NoError(t, m.err)
	require.NotNil(t, m.result)
	assert.InDelta(t, 3000, m.result.Gross.InexactFloat64(), 0.02)
	assert.InDelta(t, 2603.83, m.result.Net.InexactFloat64(), 0.02)
	assert.Equal(t, "2014", m.result.EffectiveDate)
	assert.Equal(t, domain.InputNet, m.result.Input)

	view := m.View()
	assert.Contains(t, view, "Schedule in effect: 2014")
	assert.Contains(t, view, "INSS")
}

func TestModel_InvalidAmount(t *testing.T) {
	m := loadedModel(t)
	m.amount.SetValue("abc")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "unrecognized amount")
}

func TestModel_Navigation(t *testing.T) {
	m := loadedModel(t)

	m, _ = press(t, m, tea.KeyF2)
	assert.Equal(t, SceneSchedules, m.currentScene)
	assert.Contains(t, m.View(), "IRPF (2015-04)")

	m, _ = press(t, m, tea.KeyF1)
	assert.Equal(t, SceneHelp, m.currentScene)
	assert.Contains(t, m.View(), "KEYBOARD SHORTCUTS")

	m, cmd := press(t, m, tea.KeyEsc)
	assert.Equal(t, SceneConverter, m.currentScene)
	assert.Nil(t, cmd)

	_, cmd = press(t, m, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
