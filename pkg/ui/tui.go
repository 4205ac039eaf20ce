package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// AppController is the part of the App the TUI talks to.
type AppController interface {
	UIMessages() <-chan tea.Msg
}

type model struct {
	appController AppController
	roster        rosterModel
	width         int
	err           error
}

// InitialModel builds the roster viewer on top of a running App.
func InitialModel(appController AppController) model {
	return model{
		appController: appController,
		roster:        initRosterModel(),
	}
}

func (m model) Init() tea.Cmd {
	return m.initRoster()
}

func (m model) View() string {
	s := m.rosterView()
	s += "\nPress q or ctrl + c to quit"
	return s
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m.updateRoster(msg)
}
