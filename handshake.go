// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"bufio"
	"context"
	"io"
	"net"
)

// handshakeStage performs the bit-exact two-byte handshake over a freshly
// dialed and observed [net.Conn], and returns a [*SocketAndStreams] wrapping
// it once the remote end accepts the proposed protocol.
//
// Resource cleanup contract: per [Func], handshakeStage closes the input
// conn before returning a non-nil error.
type handshakeStage struct {
	ProtocolCode string
	BufferSize   int
	Logger       SLogger
}

var _ Func[net.Conn, *SocketAndStreams] = (*handshakeStage)(nil)

// newHandshakeStage constructs a [handshakeStage] from cfg and logger.
func newHandshakeStage(cfg *Config, logger SLogger) *handshakeStage {
	return &handshakeStage{
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	}
}

// Call implements [Func]. The ProtocolCode field must be set by the caller
// per destination before invoking Call, since the code is per-destination
// rather than fixed at stage-construction time; [SocketResourceFactory.Create]
// does this by constructing a fresh handshakeStage per call.
func (h *handshakeStage) Call(ctx context.Context, conn net.Conn) (*SocketAndStreams, error) {
	writer := bufio.NewWriterSize(conn, h.BufferSize)
	if _, err := writer.WriteString(h.ProtocolCode); err != nil {
		conn.Close()
		h.Logger.Info("handshake write failed", "protocol", h.ProtocolCode, "remote", remoteAddr(conn), "err", err)
		return nil, &HandshakeIOError{Err: err}
	}
	if err := writer.Flush(); err != nil {
		conn.Close()
		h.Logger.Info("handshake flush failed", "protocol", h.ProtocolCode, "remote", remoteAddr(conn), "err", err)
		return nil, &HandshakeIOError{Err: err}
	}

	reply := make([]byte, 2)
	if _, err := io.ReadFull(conn, reply); err != nil {
		conn.Close()
		h.Logger.Info("handshake read failed", "protocol", h.ProtocolCode, "remote", remoteAddr(conn), "err", err)
		return nil, &HandshakeIOError{Err: err}
	}

	switch string(reply) {
	case "ok":
		h.Logger.Info("handshake accepted", "protocol", h.ProtocolCode, "remote", remoteAddr(conn))
		return newSocketAndStreams(conn, h.ProtocolCode, h.BufferSize), nil
	case "no":
		conn.Close()
		h.Logger.Info("handshake rejected", "protocol", h.ProtocolCode, "remote", remoteAddr(conn))
		return nil, &ProtocolRejectedError{ProtocolCode: h.ProtocolCode}
	default:
		conn.Close()
		h.Logger.Info("handshake unknown response", "protocol", h.ProtocolCode, "remote", remoteAddr(conn), "response", string(reply))
		return nil, &ProtocolUnknownResponseError{ProtocolCode: h.ProtocolCode, Response: reply}
	}
}
