package appevents

import "github.com/rescp17/lanRoster/pkg/discovery"

// AppUIMessage is a marker interface for messages sent from the App's logic controller to the TUI.
type AppUIMessage interface {
	isUIMessage()
}

// UIMessage is a base struct that can be embedded in other types to implement the AppUIMessage interface.
type UIMessage struct{}

func (UIMessage) isUIMessage() {}

// RosterMsg carries a fresh copy of the roster on every refresh.
type RosterMsg struct {
	UIMessage
	Identity string
	Peers    []discovery.Peer
	Stats    discovery.Stats
}

// AppErrorMsg reports an error that stopped the App.
type AppErrorMsg struct {
	UIMessage
	Err error
}

var (
	_ AppUIMessage = RosterMsg{}
	_ AppUIMessage = AppErrorMsg{}
)
