//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"net"

	"golang.org/x/sys/unix"
)

// readSocketBuffers returns the OS's actual SO_RCVBUF/SO_SNDBUF for the
// socket behind conn. Linux commonly doubles (or otherwise clamps) the
// value passed to setsockopt, so a readback is needed to know what was
// really applied.
func readSocketBuffers(conn *net.TCPConn) (rcvbuf, sndbuf int, err error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, 0, err
	}

	var rcvErr, sndErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		rcvbuf, rcvErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
		sndbuf, sndErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF)
	})
	if ctrlErr != nil {
		return 0, 0, ctrlErr
	}
	if rcvErr != nil {
		return 0, 0, rcvErr
	}
	if sndErr != nil {
		return 0, 0, sndErr
	}
	return rcvbuf, sndbuf, nil
}
