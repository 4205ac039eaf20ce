package discovery

import "sync/atomic"

// Stats is a point-in-time copy of the service counters.
type Stats struct {
	Sent          uint64 `json:"sent"`
	SendErrors    uint64 `json:"send_errors"`
	Received      uint64 `json:"received"`
	Foreign       uint64 `json:"foreign"`
	Self          uint64 `json:"self"`
	ReceiveErrors uint64 `json:"receive_errors"`
	PeersAdded    uint64 `json:"peers_added"`
}

type counters struct {
	sent          atomic.Uint64
	sendErrors    atomic.Uint64
	received      atomic.Uint64
	foreign       atomic.Uint64
	self          atomic.Uint64
	receiveErrors atomic.Uint64
	peersAdded    atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Sent:          c.sent.Load(),
		SendErrors:    c.sendErrors.Load(),
		Received:      c.received.Load(),
		Foreign:       c.foreign.Load(),
		Self:          c.self.Load(),
		ReceiveErrors: c.receiveErrors.Load(),
		PeersAdded:    c.peersAdded.Load(),
	}
}
