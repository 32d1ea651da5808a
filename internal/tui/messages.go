package tui

import (
	"github.com/rgehrsitz/salconv/internal/calculation"
	"github.com/rgehrsitz/salconv/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneConverter Scene = iota
	SceneSchedules
	SceneHelp
)

// Message types for the Bubble Tea update cycle

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// SchedulesLoadedMsg carries the converter built from the loaded schedules
type SchedulesLoadedMsg struct {
	Converter *calculation.Converter
}

// ConversionCompleteMsg signals a conversion has finished
type ConversionCompleteMsg struct {
	Request domain.ConversionRequest
	Result  *domain.ConversionResult
	Err     error
}
