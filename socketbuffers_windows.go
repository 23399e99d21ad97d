//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"errors"
	"net"
)

// readSocketBuffers is not implemented on windows: golang.org/x/sys/windows
// does not expose a getsockopt wrapper for SO_RCVBUF/SO_SNDBUF. Callers
// treat the returned error as "readback unavailable" and skip the
// comparison rather than fail the connection.
func readSocketBuffers(conn *net.TCPConn) (rcvbuf, sndbuf int, err error) {
	return 0, 0, errors.New("vrouter: socket buffer readback not supported on this platform")
}
