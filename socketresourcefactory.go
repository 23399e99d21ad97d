// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassosimone/runtimex"
	"golang.org/x/sync/semaphore"
)

// SocketResourceFactory is a resource factory over [Destination]: it
// creates, validates, and destroys pooled [*SocketAndStreams] transports,
// and supports generational invalidation via [SocketResourceFactory.MarkDestinationClosed].
//
// A single SocketResourceFactory is shared by every concurrent [Pipeline]
// in the process. All of its state is safe for concurrent use: counters
// are updated atomically, and the two timestamp maps are [sync.Map]
// instances, which is sufficient because no invariant spans more than one
// key.
type SocketResourceFactory struct {
	cfg    *Config
	logger SLogger

	created   int64
	destroyed int64

	// socketCreatedAt maps a live *SocketAndStreams to the monotonic
	// timestamp (int64 nanoseconds) at which Create returned it.
	socketCreatedAt sync.Map

	// destinationClosedAt maps a Destination to the monotonic timestamp
	// (int64 nanoseconds) of the most recent MarkDestinationClosed call.
	destinationClosedAt sync.Map

	sem *semaphore.Weighted
}

// NewSocketResourceFactory constructs a [*SocketResourceFactory] from cfg.
// If logger is nil, [DefaultSLogger] is used.
func NewSocketResourceFactory(cfg *Config, logger SLogger) *SocketResourceFactory {
	if logger == nil {
		logger = DefaultSLogger()
	}
	maxConcurrent := cfg.MaxConcurrentCreates
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &SocketResourceFactory{
		cfg:    cfg,
		logger: logger,
		sem:    semaphore.NewWeighted(maxConcurrent),
	}
}

// Create opens a new pooled transport to dest: dials TCP, applies the
// configured socket options, increments the created counter once the dial
// succeeds (even if the handshake then fails), performs the handshake, and
// on success records a creation timestamp for the returned [*SocketAndStreams].
//
// The context's deadline, if any, bounds the whole operation; if ctx
// carries no deadline, SoTimeoutMs bounds the dial and the handshake.
func (f *SocketResourceFactory) Create(ctx context.Context, dest Destination) (*SocketAndStreams, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer f.sem.Release(1)

	connectCtx := ctx
	if _, ok := ctx.Deadline(); !ok && f.cfg.SoTimeoutMs > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, time.Duration(f.cfg.SoTimeoutMs)*time.Millisecond)
		defer cancel()
	}

	dial := newDialStage(f.cfg, f.logger)
	sockopts := &socketOptionsStage{cfg: f.cfg, logger: f.logger}
	observe := newObserveStage(f.cfg, f.logger)

	transport := Compose3[Destination, net.Conn, net.Conn, net.Conn](dial, sockopts, observe)
	conn, err := transport.Call(connectCtx, dest)
	if err != nil {
		return nil, err
	}

	// The socket exists at the TCP level from here on, independent of
	// whether the application-level handshake below succeeds, so the
	// created counter is incremented now and is not rolled back on a
	// handshake failure.
	atomic.AddInt64(&f.created, 1)

	// Bound the handshake round-trip to connectCtx: if the caller's
	// context is cancelled while waiting on the 2-byte reply, the
	// connection is closed immediately rather than left blocked on the
	// read. The watcher is narrowly scoped to this
	// round-trip; it is torn down below before the transport is handed
	// to the pool, so the long-lived SocketAndStreams never retains it.
	watched, err := NewCancelWatchFunc().Call(connectCtx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	handshake := &handshakeStage{ProtocolCode: dest.ProtocolCode, BufferSize: f.cfg.BufferSize, Logger: f.logger}
	result, err := handshake.Call(connectCtx, watched)
	if err != nil {
		return nil, err
	}
	result.Conn = result.Conn.(*cancelWatchedConn).stopWatching()

	f.socketCreatedAt.Store(result, f.cfg.MonotonicNow().UnixNano())
	return result, nil
}

// Destroy closes s unconditionally, removes its creation timestamp, and
// increments the destroyed counter. Double-destroy is undefined behavior:
// the caller must not call Destroy twice for the same s.
func (f *SocketResourceFactory) Destroy(dest Destination, s *SocketAndStreams) error {
	_, hadTimestamp := f.socketCreatedAt.Load(s)
	runtimex.Assert(hadTimestamp, "vrouter: SocketResourceFactory.Destroy called on an unknown or already-destroyed transport")
	f.socketCreatedAt.Delete(s)
	atomic.AddInt64(&f.destroyed, 1)
	return s.Close()
}

// Validate reports whether s is still usable for dest: a creation
// timestamp must exist for s, that timestamp must be strictly after any
// recorded MarkDestinationClosed call for dest, and the transport must
// still appear bound, connected, and not closed.
//
// A missing creation timestamp is logged but, by default, does not by
// itself invalidate the transport; set [Config.StrictValidation] to treat
// a missing timestamp as invalid instead.
func (f *SocketResourceFactory) Validate(dest Destination, s *SocketAndStreams) bool {
	createdAtRaw, hadTimestamp := f.socketCreatedAt.Load(s)
	if !hadTimestamp {
		f.logger.Debug("validate: missing creation timestamp", "dest", dest.String(), "strict", f.cfg.StrictValidation)
		if f.cfg.StrictValidation {
			return false
		}
	} else {
		createdAt := createdAtRaw.(int64)
		if closedAtRaw, hadClosed := f.destinationClosedAt.Load(dest); hadClosed {
			closedAt := closedAtRaw.(int64)
			if createdAt <= closedAt {
				return false
			}
		}
	}
	return s.isBoundConnectedNotClosed()
}

// MarkDestinationClosed records the current monotonic timestamp for dest.
// Any transport whose creation timestamp does not strictly postdate this
// call will subsequently fail Validate for dest and must be destroyed by
// the pool rather than reused.
func (f *SocketResourceFactory) MarkDestinationClosed(dest Destination) {
	f.destinationClosedAt.Store(dest, f.cfg.MonotonicNow().UnixNano())
}

// Close clears both timestamp maps. Intended for factory teardown; it is
// the caller's responsibility not to race Close with ordinary
// create/destroy/validate traffic.
func (f *SocketResourceFactory) Close() {
	f.socketCreatedAt.Range(func(key, _ any) bool {
		f.socketCreatedAt.Delete(key)
		return true
	})
	f.destinationClosedAt.Range(func(key, _ any) bool {
		f.destinationClosedAt.Delete(key)
		return true
	})
}

// SocketResourceFactoryStats is a snapshot of the factory's lifetime
// counters.
type SocketResourceFactoryStats struct {
	// Created is the total number of transports whose dial succeeded,
	// including those whose handshake then failed.
	Created int64

	// Destroyed is the total number of transports destroyed.
	Destroyed int64
}

// Stats returns a snapshot of the factory's created/destroyed counters.
// A transport whose handshake fails is counted in Created and closed by
// Create itself, never by Destroy, so Created minus Destroyed equals the
// count of live transports plus the number of failed handshakes.
func (f *SocketResourceFactory) Stats() SocketResourceFactoryStats {
	return SocketResourceFactoryStats{
		Created:   atomic.LoadInt64(&f.created),
		Destroyed: atomic.LoadInt64(&f.destroyed),
	}
}

// socketOptionsStage is the second stage of [*SocketResourceFactory.Create]'s
// composed pipeline: it applies the configured buffer sizes and disables
// Nagle's algorithm on the freshly dialed transport, before it is wrapped
// for observation.
type socketOptionsStage struct {
	cfg    *Config
	logger SLogger
}

var _ Func[net.Conn, net.Conn] = (*socketOptionsStage)(nil)

// Call implements [Func]. Non-TCP connections (e.g. test doubles) pass
// through unchanged.
func (s *socketOptionsStage) Call(ctx context.Context, conn net.Conn) (net.Conn, error) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return conn, nil
	}
	if err := tcpConn.SetNoDelay(true); err != nil {
		s.logger.Debug("setNoDelay failed", "err", err)
	}
	if err := tcpConn.SetReadBuffer(s.cfg.BufferSize); err != nil {
		s.logger.Debug("setReadBuffer failed", "err", err)
	}
	if err := tcpConn.SetWriteBuffer(s.cfg.BufferSize); err != nil {
		s.logger.Debug("setWriteBuffer failed", "err", err)
	}

	// The OS is free to clamp or double what was requested (common on
	// Linux, which doubles SO_RCVBUF/SO_SNDBUF to leave room for
	// bookkeeping overhead); read back what was actually applied and log
	// when it differs from what was configured.
	if rcvbuf, sndbuf, err := readSocketBuffers(tcpConn); err != nil {
		s.logger.Debug("socket buffer readback unavailable", "err", err)
	} else if rcvbuf != s.cfg.BufferSize || sndbuf != s.cfg.BufferSize {
		s.logger.Debug("socket buffer size adjusted by OS",
			"configured", s.cfg.BufferSize, "actualReadBuffer", rcvbuf, "actualWriteBuffer", sndbuf)
	}

	return tcpConn, nil
}
