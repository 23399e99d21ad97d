// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"net"
	"time"

	"github.com/bassosimone/vrouter/errclass"
)

// Config holds common configuration for vrouter operations.
//
// Pass this to constructor functions to pre-wire dependencies. All fields
// have sensible defaults set by [NewConfig].
type Config struct {
	// Dialer is used by [*SocketResourceFactory] to open transports.
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [ErrClassifierFunc] wrapping [errclass.New].
	ErrClassifier ErrClassifier

	// TimeNow returns the current wall-clock time, used for log timestamps.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// MonotonicNow returns a point in time whose deltas via Sub are
	// monotonic, used for elapsed-time measurements and the factory's
	// generational-invalidation timestamps.
	//
	// Set by [NewConfig] to [time.Now] (Go's runtime already guarantees
	// monotonic deltas for values returned by [time.Now]).
	MonotonicNow func() time.Time

	// SoTimeoutMs bounds the dial and the handshake round-trip of
	// [*SocketResourceFactory.Create] when the caller's context carries no
	// deadline. No read or write deadline is set on the socket afterwards.
	//
	// Set by [NewConfig] to 5000.
	SoTimeoutMs int

	// BufferSize is the requested SO_RCVBUF/SO_SNDBUF size, in bytes, for
	// sockets created by [*SocketResourceFactory].
	//
	// Set by [NewConfig] to 64 * 1024.
	BufferSize int

	// MaxConcurrentCreates bounds the number of concurrent in-flight
	// [*SocketResourceFactory.Create] calls across the whole factory.
	//
	// Set by [NewConfig] to 64.
	MaxConcurrentCreates int64

	// StrictValidation, when true, makes [*SocketResourceFactory.Validate]
	// reject a transport with no recorded creation timestamp instead of
	// warning and treating it as valid. Default false, preserving the
	// historical warn-only behavior.
	//
	// Set by [NewConfig] to false.
	StrictValidation bool
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:               &net.Dialer{},
		ErrClassifier:        ErrClassifierFunc(errclass.New),
		TimeNow:              time.Now,
		MonotonicNow:         time.Now,
		SoTimeoutMs:          5000,
		BufferSize:           64 * 1024,
		MaxConcurrentCreates: 64,
		StrictValidation:     false,
	}
}
