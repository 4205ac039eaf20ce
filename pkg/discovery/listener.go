package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
)

// Listener receives announcements and records every peer other than itself.
type Listener struct {
	conn     net.PacketConn
	identity string
	registry *Registry
	stats    *counters
	log      *slog.Logger
}

// openListenConn binds the discovery port with address reuse so several
// instances on the same host can listen at once.
func openListenConn(ctx context.Context, host string, port int, reusePort bool) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: reuseControl(reusePort)}
	conn, err := lc.ListenPacket(ctx, "udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to bind discovery port %d: %w", port, err)
	}
	return conn, nil
}

func newListener(conn net.PacketConn, identity string, registry *Registry, stats *counters, log *slog.Logger) *Listener {
	return &Listener{
		conn:     conn,
		identity: identity,
		registry: registry,
		stats:    stats,
		log:      log,
	}
}

// Run reads datagrams until the socket is closed or ctx is cancelled.
// Read errors other than those are counted and skipped.
func (l *Listener) Run(ctx context.Context) error {
	buf := make([]byte, MaxPayloadSize)
	for {
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.stats.receiveErrors.Add(1)
			l.log.Debug("Receive failed", "error", err)
			continue
		}
		l.Process(buf[:n], addr)

		if ctx.Err() != nil {
			return nil
		}
	}
}

// Process handles one datagram from addr. Foreign traffic and our own
// announcements are dropped without error.
func (l *Listener) Process(payload []byte, addr net.Addr) {
	l.stats.received.Add(1)

	peerID, ok := ParseAnnouncement(payload)
	if !ok {
		l.stats.foreign.Add(1)
		return
	}
	if peerID == l.identity {
		l.stats.self.Add(1)
		return
	}

	peer := Peer{ID: peerID, Addr: hostOf(addr)}
	if l.registry.Add(peer) {
		l.stats.peersAdded.Add(1)
		l.log.Debug("Discovered peer", "id", peer.ID, "addr", peer.Addr)
	}
}

// LocalAddr returns the address the listener is bound to.
func (l *Listener) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Close releases the socket, unblocking a pending read.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// hostOf returns the IP part of a sender address.
func hostOf(addr net.Addr) string {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP.String()
	case nil:
		return ""
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}
