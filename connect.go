//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/ooni/probe-cli/blob/v3.20.1/internal/netxlite/dialer.go
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/x/netcore/dialer.go
//

package vrouter

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"
)

// Dialer abstracts the [*net.Dialer] behavior.
//
// By making [*SocketResourceFactory] depend on an abstract implementation we
// allow for unit testing and for using alternative dialers.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// dialStage is the first stage of [*SocketResourceFactory.Create]'s
// composed pipeline: it dials the TCP transport for a [Destination].
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type dialStage struct {
	// Dialer is the [Dialer] to use.
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	Logger SLogger

	// TimeNow returns the current wall-clock time for log timestamps.
	TimeNow func() time.Time
}

func newDialStage(cfg *Config, logger SLogger) *dialStage {
	return &dialStage{
		Dialer:        cfg.Dialer,
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		TimeNow:       cfg.TimeNow,
	}
}

var _ Func[Destination, net.Conn] = &dialStage{}

// Call dials a TCP connection to dest.Host:dest.Port.
func (op *dialStage) Call(ctx context.Context, dest Destination) (net.Conn, error) {
	address := net.JoinHostPort(dest.Host, strconv.Itoa(dest.Port))
	t0 := op.TimeNow()
	deadline, _ := ctx.Deadline()
	op.logConnectStart(address, t0, deadline)
	conn, err := op.Dialer.DialContext(ctx, "tcp", address)
	op.logConnectDone(address, t0, deadline, conn, err)
	return conn, err
}

func (op *dialStage) logConnectStart(address string, t0 time.Time, deadline time.Time) {
	op.Logger.Info(
		"connectStart",
		slog.Time("deadline", deadline),
		slog.String("protocol", "tcp"),
		slog.String("remoteAddr", address),
		slog.Time("t", t0),
	)
}

func (op *dialStage) logConnectDone(address string, t0 time.Time, deadline time.Time, conn net.Conn, err error) {
	op.Logger.Info(
		"connectDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", op.ErrClassifier.Classify(err)),
		slog.String("localAddr", localAddr(conn)),
		slog.String("protocol", "tcp"),
		slog.String("remoteAddr", address),
		slog.Time("t0", t0),
		slog.Time("t", op.TimeNow()),
	)
}
