package vrouter

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way. In this package, one [Pipeline] run (one client operation routed
// across a quorum of nodes) is a span: its [Pipeline.OperationID] is
// stamped with a span ID so every log line emitted while dispatching its
// Events can be correlated.
//
// We recommend using a span ID for uniquely identifying spans.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
