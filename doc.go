// SPDX-License-Identifier: GPL-3.0-or-later

// Package vrouter implements the client-side routing and transport layer
// of a distributed key-value store: pooled, handshake-negotiated TCP
// transports to replica nodes, a failure detector feeding liveness back
// into the routing strategy, and a small event-dispatch state machine that
// drives a quorum of per-node requests for a single client operation.
//
// # Core Abstraction
//
// The transport-construction pipeline is built around a single interface:
//
//	type Func[A, B any] interface {
//		Call(ctx context.Context, input A) (B, error)
//	}
//
// Each Func represents an atomic step with exactly one success mode and
// one failure mode. This design enables type-safe composition via
// [Compose2], [Compose3], etc., where the compiler verifies that outputs
// match inputs across pipeline stages. [*SocketResourceFactory.Create]
// is itself built this way: dial, apply socket options, observe, then
// hand off to the handshake stage.
//
// # Available Primitives
//
// Routing identity:
//   - [Node]: a replica's stable id, host, port, and protocol code
//   - [Destination]: the (host, port, protocol) a pooled transport is keyed by
//   - [Key]: an opaque request key, carried through but never interpreted
//
// Transport pooling:
//   - [*SocketResourceFactory]: creates, validates, destroys, and generationally
//     invalidates pooled [*SocketAndStreams] transports
//   - [SocketAndStreams]: a negotiated transport with its buffered reader/writer
//   - [CancelWatchFunc]: closes a connection on context cancellation; used
//     narrowly by Create to bound the handshake round-trip
//   - an unexported observing stage: every dialed connection is wrapped
//     for structured I/O logging before the handshake runs
//
// Liveness:
//   - [FailureDetector]: records per-node success/exception signals with
//     latency; [NewFailureDetector] returns a process-local implementation
//
// Routing state machine:
//   - [Pipeline]: single-threaded, cooperative event dispatcher
//   - [PipelineData]: the mutable state one client operation threads through
//   - [Event], [Action]: the dispatch unit and the step that handles it
//   - [PerformSerialRequests]: the Action that issues blocking per-node
//     requests until quorum is reached or candidates are exhausted
//
// Composition utilities:
//   - [Compose2] through [Compose8]: chain Funcs into pipelines
//   - [FuncAdapter]: wrap a function as a Func for ad-hoc custom behavior
//   - [Apply]: bind a fixed input to a Func
//   - [ConstFunc]: lift a pure value into a Func
//
// # Connection Lifecycle
//
// [*SocketResourceFactory.Create] dials, applies TCP_NODELAY and the
// configured buffer sizes, wraps the connection for I/O logging, performs
// the two-byte handshake, and on success records a creation timestamp
// keyed by the returned [*SocketAndStreams]. The factory owns this
// timestamp and a second, per-[Destination] "closed at" timestamp: calling
// [*SocketResourceFactory.MarkDestinationClosed] establishes a generational
// barrier so that any transport created before that call fails a later
// [*SocketResourceFactory.Validate] and must be destroyed by the caller's
// pool rather than reused. [*SocketResourceFactory.Destroy] closes a
// transport unconditionally; double-destroy is a caller bug, not a
// defended-against case.
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible with
// [log/slog]). By default, logging is disabled. Set the Logger field (or
// pass a logger to the relevant constructor) to enable it. Error
// classification is configurable via [ErrClassifier]; by default, errors
// are classified with the errclass subpackage into short labels such as
// "ETIMEDOUT" or "ECONNRESET".
//
// Lifecycle events (connect, close, handshake, pipeline dispatch,
// non-classified per-node request errors) are logged at [slog.LevelInfo]. Per-I/O events
// (read, write, set deadline, validate checks) are logged at
// [slog.LevelDebug]. Use [NewSpanID] to generate a unique, time-ordered
// identifier (UUIDv7) for each Pipeline run; [NewPipeline] stamps one onto
// [Pipeline.OperationID] automatically so every log line from that run can
// be correlated.
//
// # Timeout and Context Philosophy
//
// [*SocketResourceFactory.Create] is context-transparent with respect to
// an externally supplied deadline, but also applies SoTimeoutMs as a
// connect timeout when the caller's context carries none. The handshake
// round-trip is additionally bound via [CancelWatchFunc]: if the context
// is cancelled while waiting on the server's two-byte reply, the
// connection is closed immediately rather than left blocked on the read;
// the socket itself carries no read deadline. Once past the handshake, the pooled
// [SocketAndStreams] does not retain this watcher: its lifetime is managed
// by whichever pool calls Create/Destroy/Validate, not by any one caller's
// context.
//
// [PerformSerialRequests] observes no cancellation from inside its loop: a
// higher layer that wants to abandon an in-flight routing operation must
// do so by draining the [Pipeline] before its next [Event], not by
// cancelling mid-Action.
//
// # Design Boundaries
//
// This package intentionally stops at client-side routing and transport.
// The following are out of scope and are the responsibility of higher
// layers:
//
//   - The routing strategy that selects and orders candidate [Node]s
//   - Parallel/fan-out request execution preceding the serial fallback
//   - The wire serialization format used once a protocol is negotiated
//   - Persistence, replication, and consistency resolution on the server side
//   - Cluster membership and rebalancing
package vrouter
