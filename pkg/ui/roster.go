package ui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	appevents "github.com/rescp17/lanRoster/internal/app_events"
	"github.com/rescp17/lanRoster/internal/style"
	"github.com/rescp17/lanRoster/pkg/discovery"
)

// rosterState defines the different states of the roster UI.
type rosterState int

const (
	listening rosterState = iota
	showingPeers
	failed
)

type rosterModel struct {
	state    rosterState
	spinner  spinner.Model
	table    table.Model
	identity string
	peers    []discovery.Peer
	stats    discovery.Stats
}

var columns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "Peer", Width: 36},
	{Title: "Address", Width: 18},
}

func initRosterModel() rosterModel {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(0),
	)
	t.SetStyles(style.NewTableStyles())

	return rosterModel{
		state:   listening,
		spinner: style.NewSpinner(),
		table:   t,
	}
}

// listenForAppMessages is a command that listens for messages from the app controller.
func (m *model) listenForAppMessages() tea.Cmd {
	return func() tea.Msg {
		return <-m.appController.UIMessages()
	}
}

func (m *model) initRoster() tea.Cmd {
	return tea.Batch(m.roster.spinner.Tick, m.listenForAppMessages())
}

func (m *model) updatePeerTable(peers []discovery.Peer) {
	m.roster.peers = peers
	rows := make([]table.Row, 0, len(peers))
	for i, p := range peers {
		rows = append(rows, table.Row{fmt.Sprint(i + 1), p.ID, p.Addr})
	}
	m.roster.table.SetRows(rows)
	m.roster.table.SetHeight(len(rows) + 1)
}

func (m model) updateRoster(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, processed := m.handleAppMessage(msg); processed {
		return m, cmd
	}

	var tableCmd, spinCmd tea.Cmd
	m.roster.table, tableCmd = m.roster.table.Update(msg)
	m.roster.spinner, spinCmd = m.roster.spinner.Update(msg)
	return m, tea.Batch(tableCmd, spinCmd)
}

func (m *model) handleAppMessage(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case appevents.RosterMsg:
		if len(msg.Peers) != len(m.roster.peers) {
			slog.Info("Roster update", "peer_count", len(msg.Peers))
		}
		m.roster.identity = msg.Identity
		m.roster.stats = msg.Stats
		m.updatePeerTable(msg.Peers)
		if m.roster.state != failed {
			if len(msg.Peers) > 0 {
				m.roster.state = showingPeers
			} else {
				m.roster.state = listening
			}
		}
		return m.listenForAppMessages(), true
	case appevents.AppErrorMsg:
		m.err = msg.Err
		m.roster.state = failed
		return nil, true
	}
	return nil, false
}

func (m model) rosterView() string {
	s := style.TitleStyle.Render("LAN roster")
	if m.roster.identity != "" {
		s += "  " + style.HighlightFontStyle.Render(m.truncate("as "+m.roster.identity))
	}
	s += "\n"

	switch m.roster.state {
	case listening:
		s += fmt.Sprintf("\n%s Listening for peers...\n", m.roster.spinner.View())
	case showingPeers:
		s += fmt.Sprintf("\nFound %d peer(s)\n", len(m.roster.peers))
		s += style.BaseStyle.Render(m.roster.table.View()) + "\n"
	case failed:
		s += "\n" + style.ErrorStyle.Render(fmt.Sprintf("Discovery failed: %v", m.err)) + "\n"
	default:
		return "Internal error: unknown roster state"
	}

	st := m.roster.stats
	s += style.StatsStyle.Render(fmt.Sprintf("sent %d (%d failed) · received %d · foreign %d · self %d",
		st.Sent, st.SendErrors, st.Received, st.Foreign, st.Self)) + "\n"
	return s
}

// truncate shortens s to the terminal width, counting wide runes correctly.
func (m model) truncate(s string) string {
	w := m.width - len("LAN roster  ")
	if m.width <= 0 || w < 1 {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}
