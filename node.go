// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import "fmt"

// Node identifies a single replica in a cluster: a stable numeric id, a
// host, a port, and a protocol code understood by [*SocketResourceFactory]'s
// handshake. Node is immutable after construction and comparable, so it is
// safe to use as a map key (e.g. in a stores registry keyed by Node.ID, or
// directly as a set member).
type Node struct {
	// ID is the stable numeric identity of the node within the cluster.
	ID uint64

	// Host is the hostname or IP address of the node.
	Host string

	// Port is the TCP port the node listens on.
	Port int

	// ProtocolCode is the protocol tag proposed during the handshake
	// (e.g. "vp1", "vp3"). See handshake.go.
	ProtocolCode string
}

// Destination returns the routing-level identity of n: the (host, port,
// protocol) tuple that [*SocketResourceFactory] pools connections by.
// Distinct Nodes may share a Destination.
func (n Node) Destination() Destination {
	return Destination{Host: n.Host, Port: n.Port, ProtocolCode: n.ProtocolCode}
}

// String returns a human-readable representation of n, for logging only.
func (n Node) String() string {
	return fmt.Sprintf("node#%d(%s:%d)", n.ID, n.Host, n.Port)
}

// Destination identifies a pooled connection endpoint: a (host, port,
// protocol) tuple. Equality is value-based; Destination is comparable and
// safe to use as a map key.
type Destination struct {
	// Host is the hostname or IP address of the endpoint.
	Host string

	// Port is the TCP port of the endpoint.
	Port int

	// ProtocolCode is the protocol tag negotiated during the handshake.
	ProtocolCode string
}

// String returns a human-readable representation of d, for logging only.
func (d Destination) String() string {
	return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.ProtocolCode)
}

// Key is an opaque request key. Its content is not interpreted by this
// package; it is carried through [PipelineData] for downstream callbacks.
type Key []byte

// String returns a best-effort textual rendering of k, for log messages
// only. It is never used for comparison or equality.
func (k Key) String() string {
	return string(k)
}
