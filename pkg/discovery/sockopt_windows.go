//go:build windows

package discovery

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

func broadcastControl(_, _ string, c syscall.RawConn) error {
	return setsockopt(c, windows.SO_BROADCAST)
}

// Windows has no SO_REUSEPORT; SO_REUSEADDR already allows shared binds.
func reuseControl(_ bool) func(string, string, syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		return setsockopt(c, windows.SO_REUSEADDR)
	}
}

func setsockopt(c syscall.RawConn, opt int) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, opt, 1); err != nil {
			opErr = fmt.Errorf("setsockopt %d: %w", opt, err)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}
