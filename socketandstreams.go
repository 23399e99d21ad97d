// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"bufio"
	"net"
	"sync/atomic"
)

// SocketAndStreams bundles a negotiated transport with its buffered
// reader/writer. It is the resource type that [*SocketResourceFactory]
// creates, validates, pools, and destroys.
type SocketAndStreams struct {
	// Conn is the underlying transport, already past the handshake.
	Conn net.Conn

	// Reader is a buffered reader over Conn.
	Reader *bufio.Reader

	// Writer is a buffered writer over Conn.
	Writer *bufio.Writer

	// ProtocolCode is the protocol negotiated during the handshake.
	ProtocolCode string

	// closed is set by Close; see isBoundConnectedNotClosed.
	closed atomic.Bool
}

// newSocketAndStreams wraps conn (already past the handshake) with buffered
// I/O sized per bufferSize.
func newSocketAndStreams(conn net.Conn, protocolCode string, bufferSize int) *SocketAndStreams {
	return &SocketAndStreams{
		Conn:         conn,
		Reader:       bufio.NewReaderSize(conn, bufferSize),
		Writer:       bufio.NewWriterSize(conn, bufferSize),
		ProtocolCode: protocolCode,
	}
}

// Close closes the underlying transport and marks it closed for
// [*SocketAndStreams.isBoundConnectedNotClosed].
func (s *SocketAndStreams) Close() error {
	s.closed.Store(true)
	return s.Conn.Close()
}

// LocalAddr returns the transport's local address as a string, or "" if
// unavailable.
func (s *SocketAndStreams) LocalAddr() string {
	return localAddr(s.Conn)
}

// RemoteAddr returns the transport's remote address as a string, or "" if
// unavailable.
func (s *SocketAndStreams) RemoteAddr() string {
	return remoteAddr(s.Conn)
}

// isBoundConnectedNotClosed reports whether s's underlying transport still
// looks usable: not yet closed via [*SocketAndStreams.Close], and bound to
// both a local and a remote address. Go's [net.Conn] exposes no isClosed
// query, and a closed *net.TCPConn keeps returning its cached addresses
// (the address fields survive Close; only the file descriptor is cleared),
// so closed-ness must be tracked explicitly rather than inferred from
// address nilness.
func (s *SocketAndStreams) isBoundConnectedNotClosed() bool {
	if s.Conn == nil || s.closed.Load() {
		return false
	}
	return s.Conn.LocalAddr() != nil && s.Conn.RemoteAddr() != nil
}
