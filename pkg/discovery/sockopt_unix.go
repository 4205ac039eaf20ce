//go:build !windows

package discovery

import (
	"fmt"
	"log/slog"
	"syscall"

	"golang.org/x/sys/unix"
)

func broadcastControl(_, _ string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
			opErr = fmt.Errorf("set SO_BROADCAST: %w", err)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}

func reuseControl(reusePort bool) func(string, string, syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var opErr error
		err := c.Control(func(fd uintptr) {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
				opErr = fmt.Errorf("set SO_REUSEADDR: %w", err)
				return
			}
			if reusePort {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
					// SO_REUSEADDR alone still lets broadcast listeners share the port.
					slog.Debug("SO_REUSEPORT not available", "error", err)
				}
			}
		})
		if err != nil {
			return err
		}
		return opErr
	}
}
