// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import "net"

// localAddr returns conn's local address as a string, or "" if conn is nil
// or its LocalAddr is nil. This mirrors the nil-safety that callers need
// when logging a connection that failed to dial or handshake.
func localAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.LocalAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// remoteAddr returns conn's remote address as a string, or "" if conn is
// nil or its RemoteAddr is nil.
func remoteAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
