//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/errclass.go
//

// Package errclass classifies network errors into short, stable strings
// suitable for structured-logging fields and for systematic analysis of
// store-transport failures (connect, handshake, read, write).
package errclass

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Exported classification labels.
//
// These are deliberately short and POSIX-errno-shaped so that logs from
// different operating systems remain comparable.
const (
	EADDRNOTAVAIL   = "EADDRNOTAVAIL"
	EADDRINUSE      = "EADDRINUSE"
	ECANCELED       = "ECANCELED"
	ECONNABORTED    = "ECONNABORTED"
	ECONNREFUSED    = "ECONNREFUSED"
	ECONNRESET      = "ECONNRESET"
	EEOF            = "EEOF"
	EGENERIC        = "EGENERIC"
	EHOSTUNREACH    = "EHOSTUNREACH"
	EINVAL          = "EINVAL"
	EINTR           = "EINTR"
	ENETDOWN        = "ENETDOWN"
	ENETUNREACH     = "ENETUNREACH"
	ENOBUFS         = "ENOBUFS"
	ENOTCONN        = "ENOTCONN"
	EPROTONOSUPPORT = "EPROTONOSUPPORT"
	ETIMEDOUT       = "ETIMEDOUT"
)

// New classifies err into one of the labels above.
//
// Returns the empty string for a nil error. Unrecognized errors are
// classified as [EGENERIC] rather than left unclassified, so that every
// non-nil error produces a usable structured-log value.
func New(err error) string {
	if err == nil {
		return ""
	}

	// 1. Context-level conditions take priority: these arise above the
	// syscall layer (e.g. a connect or handshake bounded by SoTimeoutMs).
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ETIMEDOUT
	case errors.Is(err, context.Canceled):
		return ECANCELED
	case errors.Is(err, net.ErrClosed):
		return ECONNABORTED
	}

	// 2. A net.OpError reporting a timeout (e.g. an expired I/O deadline).
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Timeout() {
		return ETIMEDOUT
	}

	// 3. Unwrap to the underlying syscall.Errno, if any.
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return EGENERIC
	}

	switch errno {
	case errEADDRNOTAVAIL:
		return EADDRNOTAVAIL
	case errEADDRINUSE:
		return EADDRINUSE
	case errECONNABORTED:
		return ECONNABORTED
	case errECONNREFUSED:
		return ECONNREFUSED
	case errECONNRESET:
		return ECONNRESET
	case errEHOSTUNREACH:
		return EHOSTUNREACH
	case errEINVAL:
		return EINVAL
	case errEINTR:
		return EINTR
	case errENETDOWN:
		return ENETDOWN
	case errENETUNREACH:
		return ENETUNREACH
	case errENOBUFS:
		return ENOBUFS
	case errENOTCONN:
		return ENOTCONN
	case errEPROTONOSUPPORT:
		return EPROTONOSUPPORT
	case errETIMEDOUT:
		return ETIMEDOUT
	default:
		return EGENERIC
	}
}
