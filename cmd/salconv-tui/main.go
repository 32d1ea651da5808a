package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/salconv/internal/config"
	"github.com/rgehrsitz/salconv/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Settings file (YAML)")
	scheduleFile := flag.String("schedules", "", "Schedule file (YAML or JSON)")
	flag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *scheduleFile != "" {
		if _, err := os.Stat(*scheduleFile); os.IsNotExist(err) {
			fmt.Printf("Error: Schedule file not found: %s\n", *scheduleFile)
			os.Exit(1)
		}
		settings.Schedules = config.SchedulePaths{File: *scheduleFile}
	}

	model := tui.NewModel(settings.Schedules, settings.SolverOptions())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
