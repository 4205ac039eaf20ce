package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appevents "github.com/rescp17/lanRoster/internal/app_events"
	"github.com/rescp17/lanRoster/pkg/discovery"
)

type fakeController struct {
	ch chan tea.Msg
}

func (f *fakeController) UIMessages() <-chan tea.Msg { return f.ch }

func newTestModel() model {
	return InitialModel(&fakeController{ch: make(chan tea.Msg, 1)})
}

func TestModel_ListeningUntilPeersArrive(t *testing.T) {
	m := newTestModel()
	assert.Contains(t, m.View(), "Listening for peers")

	updated, cmd := m.Update(appevents.RosterMsg{Identity: "hostA"})
	require.NotNil(t, cmd, "model should keep listening for app messages")
	m = updated.(model)
	assert.Equal(t, listening, m.roster.state)
	assert.Contains(t, m.View(), "as hostA")
}

func TestModel_ShowsPeers(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(appevents.RosterMsg{
		Identity: "hostA",
		Peers: []discovery.Peer{
			{ID: "hostB", Addr: "192.168.1.20"},
			{ID: "hostC", Addr: "192.168.1.30"},
		},
		Stats: discovery.Stats{Sent: 4, Received: 9},
	})
	m = updated.(model)

	assert.Equal(t, showingPeers, m.roster.state)
	view := m.View()
	assert.Contains(t, view, "Found 2 peer(s)")
	assert.Contains(t, view, "hostB")
	assert.Contains(t, view, "192.168.1.30")
	assert.Contains(t, view, "sent 4")
}

func TestModel_ShowsStartError(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(appevents.AppErrorMsg{Err: errors.New("failed to bind discovery port 54545")})
	m = updated.(model)

	assert.Nil(t, cmd)
	assert.Equal(t, failed, m.roster.state)
	assert.Contains(t, m.View(), "failed to bind discovery port 54545")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_TruncatesIdentity(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	m = updated.(model)

	got := m.truncate("as a-very-long-hostname_10.0.0.1")
	assert.LessOrEqual(t, runewidth.StringWidth(got), 8)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "as hostA", m.truncate("as hostA"))
}
