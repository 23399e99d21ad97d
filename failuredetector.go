// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"sync"
	"time"
)

// FailureDetector records per-node success and exception signals together
// with observed latency, and answers liveness queries for the routing
// strategy upstream. [PerformSerialRequests] is the primary writer;
// the routing layer that seeds [PipelineData.Nodes] is the primary reader.
//
// Implementations must treat failures to record as fire-and-forget: the
// caller never checks a return value, so an implementation that needs to
// report its own internal faults must do so via its own logger, not by
// panicking or blocking the caller.
type FailureDetector interface {
	// RecordSuccess records a successful request to node that took
	// requestTimeMs milliseconds.
	RecordSuccess(node Node, requestTimeMs float64)

	// RecordException records a transport-level failure reaching node,
	// which took requestTimeMs milliseconds before failing, due to err.
	RecordException(node Node, requestTimeMs float64, err error)

	// IsAvailable reports the current liveness verdict for node.
	IsAvailable(node Node) bool

	// Stats returns a snapshot of the counters tracked for node.
	Stats(node Node) FailureDetectorStats
}

// FailureDetectorStats is a snapshot of the counters a [FailureDetector]
// tracks for a single [Node].
type FailureDetectorStats struct {
	// Successes is the total number of successful requests recorded.
	Successes int64

	// Exceptions is the total number of transport exceptions recorded.
	Exceptions int64

	// ConsecutiveExceptions is the number of exceptions recorded since the
	// last success (reset to zero by RecordSuccess).
	ConsecutiveExceptions int64

	// LastSuccessAt is the wall-clock time of the most recent success, or
	// the zero [time.Time] if none has been recorded.
	LastSuccessAt time.Time

	// LastExceptionAt is the wall-clock time of the most recent exception,
	// or the zero [time.Time] if none has been recorded.
	LastExceptionAt time.Time
}

// nodeState is the mutable per-node bookkeeping guarded by
// [inMemoryFailureDetector.mu].
type nodeState struct {
	successes             int64
	exceptions            int64
	consecutiveExceptions int64
	lastSuccessAt         time.Time
	lastExceptionAt       time.Time
}

// inMemoryFailureDetector is a process-local [FailureDetector] keyed by
// [Node]. A node is considered unavailable once it has accumulated at
// least threshold consecutive exceptions with no intervening success.
type inMemoryFailureDetector struct {
	mu        sync.RWMutex
	states    map[Node]*nodeState
	threshold int64
	timeNow   func() time.Time
	logger    SLogger
}

var _ FailureDetector = (*inMemoryFailureDetector)(nil)

// NewFailureDetector returns a [FailureDetector] that tracks liveness
// in-memory for the lifetime of the process. threshold is the number of
// consecutive exceptions (with no intervening success) after which a node
// is reported unavailable; a threshold ≤ 0 is treated as 1.
func NewFailureDetector(threshold int64, timeNow func() time.Time, logger SLogger) FailureDetector {
	if threshold <= 0 {
		threshold = 1
	}
	if timeNow == nil {
		timeNow = time.Now
	}
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &inMemoryFailureDetector{
		states:    make(map[Node]*nodeState),
		threshold: threshold,
		timeNow:   timeNow,
		logger:    logger,
	}
}

// state returns the nodeState for node, creating one if necessary.
func (fd *inMemoryFailureDetector) state(node Node) *nodeState {
	fd.mu.RLock()
	st, found := fd.states[node]
	fd.mu.RUnlock()
	if found {
		return st
	}
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if st, found = fd.states[node]; found {
		return st
	}
	st = &nodeState{}
	fd.states[node] = st
	return st
}

// RecordSuccess implements [FailureDetector].
func (fd *inMemoryFailureDetector) RecordSuccess(node Node, requestTimeMs float64) {
	st := fd.state(node)
	fd.mu.Lock()
	defer fd.mu.Unlock()
	st.successes++
	st.consecutiveExceptions = 0
	st.lastSuccessAt = fd.timeNow()
	fd.logger.Debug("failuredetector: recorded success", "node", node.String(), "requestTimeMs", requestTimeMs)
}

// RecordException implements [FailureDetector].
func (fd *inMemoryFailureDetector) RecordException(node Node, requestTimeMs float64, err error) {
	st := fd.state(node)
	fd.mu.Lock()
	defer fd.mu.Unlock()
	st.exceptions++
	st.consecutiveExceptions++
	st.lastExceptionAt = fd.timeNow()
	fd.logger.Debug("failuredetector: recorded exception", "node", node.String(), "requestTimeMs", requestTimeMs, "err", err)
}

// IsAvailable implements [FailureDetector].
func (fd *inMemoryFailureDetector) IsAvailable(node Node) bool {
	fd.mu.RLock()
	defer fd.mu.RUnlock()
	st, found := fd.states[node]
	if !found {
		return true
	}
	return st.consecutiveExceptions < fd.threshold
}

// Stats implements [FailureDetector].
func (fd *inMemoryFailureDetector) Stats(node Node) FailureDetectorStats {
	fd.mu.RLock()
	defer fd.mu.RUnlock()
	st, found := fd.states[node]
	if !found {
		return FailureDetectorStats{}
	}
	return FailureDetectorStats{
		Successes:             st.successes,
		Exceptions:            st.exceptions,
		ConsecutiveExceptions: st.consecutiveExceptions,
		LastSuccessAt:         st.lastSuccessAt,
		LastExceptionAt:       st.lastExceptionAt,
	}
}
