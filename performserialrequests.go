// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"context"
	"errors"
)

// PerformSerialRequests is the [Action] that makes up any shortfall left by
// an earlier parallel stage: it issues blocking per-node requests, in
// order, until [PipelineData.Successes] reaches Preferred or no candidates
// remain, then steers the Pipeline based on whether Required successes
// were reached.
type PerformSerialRequests struct {
	// OperationName names the operation being performed (e.g. "Get",
	// "Put"), used in the message of a synthesized
	// [InsufficientOperationalNodesError].
	OperationName string

	// Stores maps a Node's ID to its per-node [Store] handle. Obtained
	// from an external registry; this Action does not own it.
	Stores map[uint64]Store

	// Request is the caller-supplied closure encoding which Store
	// operation to perform against a given node.
	Request StoreRequest

	// Required is the minimum number of successes for the operation to
	// succeed overall.
	Required int

	// Preferred is the target number of successes this Action tries to
	// reach before stopping. Required <= Preferred <= len(Nodes).
	Preferred int

	// InsufficientSuccessesEvent, if non-empty, is enqueued instead of
	// [EventError] when the loop ends with fewer than Required successes;
	// it hands off to another recovery stage rather than failing outright.
	InsufficientSuccessesEvent Event

	// CompleteEvent is the Event enqueued when Required successes are
	// reached.
	CompleteEvent Event

	// FailureDetector receives recordSuccess/recordException signals.
	// Failures to record are treated as fire-and-forget by this Action.
	FailureDetector FailureDetector

	// TimeNow returns the current monotonic time; used to measure
	// per-request elapsed time. Defaults are provided by
	// [NewPerformSerialRequests].
	TimeNow func() float64

	Logger SLogger
}

// NewPerformSerialRequests constructs a [*PerformSerialRequests] with a
// monotonic clock sourced from cfg and logger.
func NewPerformSerialRequests(cfg *Config, logger SLogger) *PerformSerialRequests {
	if logger == nil {
		logger = DefaultSLogger()
	}
	timeNow := cfg.MonotonicNow
	base := timeNow()
	return &PerformSerialRequests{
		FailureDetector: NewFailureDetector(1, cfg.TimeNow, logger),
		TimeNow: func() float64 {
			return float64(timeNow().Sub(base))
		},
		Logger: logger,
	}
}

var _ Action = (*PerformSerialRequests)(nil)

// Execute implements [Action]. It never panics and never propagates an
// error: every outcome is absorbed into data (continuation or a fatal
// error) or steered via an Event emitted on pipeline.
func (a *PerformSerialRequests) Execute(pipeline *Pipeline, data *PipelineData) {
	for data.Successes < a.Preferred && data.NodeIndex < len(data.Nodes) {
		node := data.Nodes[data.NodeIndex]
		startNs := a.TimeNow()
		store := a.Stores[node.ID]

		result, err := a.Request(context.Background(), node, store)

		elapsedMs := (a.TimeNow() - startNs) / 1e6

		if err == nil {
			data.Successes++
			data.InterimResults = append(data.InterimResults, RequestCompletedCallback{
				Node:      node,
				Key:       data.Key,
				ElapsedMs: elapsedMs,
				Result:    result,
			})
			a.FailureDetector.RecordSuccess(node, elapsedMs)
			data.NodeIndex++
			continue
		}

		var unreachable *UnreachableStoreError
		var application *ApplicationFaultError
		switch {
		case errors.As(err, &unreachable):
			data.Failures = append(data.Failures, err)
			a.FailureDetector.RecordException(node, elapsedMs, err)
			data.NodeIndex++

		case errors.As(err, &application):
			// NodeIndex is deliberately left unadvanced: an application
			// fault is the node's own doing, not a transport problem, so
			// this Action does not silently skip past it. A later
			// Dispatch that re-enters this same Action retries node.
			data.FatalError = err
			pipeline.AddEvent(EventError)
			return

		default:
			data.Failures = append(data.Failures, err)
			a.Logger.Info("performSerialRequests: non-classified error", "operation", a.OperationName, "node", node.String(), "err", err)
			data.NodeIndex++
		}
	}

	switch {
	case data.Successes >= a.Required:
		pipeline.AddEvent(a.CompleteEvent)

	case a.InsufficientSuccessesEvent != "":
		pipeline.AddEvent(a.InsufficientSuccessesEvent)

	default:
		data.FatalError = &InsufficientOperationalNodesError{
			OperationName: a.OperationName,
			Required:      a.Required,
			Successes:     data.Successes,
		}
		pipeline.AddEvent(EventError)
	}
}
