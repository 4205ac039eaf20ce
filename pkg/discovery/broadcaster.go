package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// packetWriter is the part of net.PacketConn the broadcaster needs.
type packetWriter interface {
	WriteTo(p []byte, addr net.Addr) (int, error)
	Close() error
}

// Broadcaster periodically announces an identity to a fixed set of destinations.
type Broadcaster struct {
	conn     packetWriter
	dests    []*net.UDPAddr
	payload  []byte
	interval time.Duration
	stats    *counters
	log      *slog.Logger
}

// openBroadcastConn opens an IPv4 UDP socket that may send to the broadcast address.
func openBroadcastConn(ctx context.Context) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: broadcastControl}
	conn, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to open broadcast socket: %w", err)
	}
	return conn, nil
}

func newBroadcaster(conn packetWriter, dests []*net.UDPAddr, identity string, interval time.Duration, stats *counters, log *slog.Logger) *Broadcaster {
	return &Broadcaster{
		conn:     conn,
		dests:    dests,
		payload:  EncodeAnnouncement(identity),
		interval: interval,
		stats:    stats,
		log:      log,
	}
}

// Run sends one announcement per interval until ctx is cancelled.
// Send failures are logged and counted; they never stop the loop.
func (b *Broadcaster) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	failing := false
	for {
		if err := b.announce(); err != nil {
			if !failing {
				b.log.Warn("Failed to send announcement", "error", err)
			} else {
				b.log.Debug("Announcement still failing", "error", err)
			}
			failing = true
		} else if failing {
			b.log.Info("Announcements recovered")
			failing = false
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// announce sends the payload to every destination and returns the last error.
func (b *Broadcaster) announce() error {
	var lastErr error
	for _, dst := range b.dests {
		if _, err := b.conn.WriteTo(b.payload, dst); err != nil {
			b.stats.sendErrors.Add(1)
			lastErr = fmt.Errorf("send to %s: %w", dst, err)
			continue
		}
		b.stats.sent.Add(1)
	}
	return lastErr
}

// Close releases the socket.
func (b *Broadcaster) Close() error {
	return b.conn.Close()
}
