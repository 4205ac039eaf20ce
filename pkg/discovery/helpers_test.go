package discovery

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// freeUDPPort reserves a loopback UDP port and releases it for the caller.
func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

func sendDatagram(t *testing.T, to net.Addr, payload []byte) {
	t.Helper()
	conn, err := net.Dial("udp4", to.String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(payload)
	require.NoError(t, err)
}

type datagram struct {
	payload []byte
	addr    net.Addr
	err     error
}

// scriptedConn is a net.PacketConn that replays reads and records writes.
type scriptedConn struct {
	mu       sync.Mutex
	reads    []datagram
	writeErr func(n int) error
	writes   []datagram
	closed   bool
}

func (c *scriptedConn) ReadFrom(p []byte) (int, net.Addr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || len(c.reads) == 0 {
		return 0, nil, net.ErrClosed
	}
	d := c.reads[0]
	c.reads = c.reads[1:]
	if d.err != nil {
		return 0, nil, d.err
	}
	n := copy(p, d.payload)
	return n, d.addr, nil
}

func (c *scriptedConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	var err error
	if c.writeErr != nil {
		err = c.writeErr(len(c.writes))
	}
	c.writes = append(c.writes, datagram{payload: append([]byte(nil), p...), addr: addr, err: err})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *scriptedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	c.closed = true
	return nil
}

func (c *scriptedConn) recorded() []datagram {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]datagram(nil), c.writes...)
}

func (c *scriptedConn) LocalAddr() net.Addr { return &net.UDPAddr{IP: net.IPv4zero} }
func (c *scriptedConn) SetDeadline(time.Time) error { return nil }
func (c *scriptedConn) SetReadDeadline(time.Time) error { return nil }
func (c *scriptedConn) SetWriteDeadline(time.Time) error { return nil }

var errNetworkDown = errors.New("network is unreachable")
