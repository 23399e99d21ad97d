// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(dialer *netstub.FuncDialer, now *int64) *SocketResourceFactory {
	cfg := NewConfig()
	cfg.Dialer = dialer
	cfg.MonotonicNow = func() time.Time { return time.Unix(0, *now) }
	return NewSocketResourceFactory(cfg, DefaultSLogger())
}

func acceptingDialer(reply string) *netstub.FuncDialer {
	return &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			conn := newMinimalConn()
			conn.WriteFunc = func(b []byte) (int, error) { return len(b), nil }
			conn.ReadFunc = func(b []byte) (int, error) { return copy(b, reply), nil }
			conn.CloseFunc = func() error { return nil }
			return conn, nil
		},
	}
}

// S5 - generational socket invalidation.
func TestSocketResourceFactoryS5GenerationalInvalidation(t *testing.T) {
	now := int64(100)
	factory := newTestFactory(acceptingDialer("ok"), &now)
	dest := Destination{Host: "10.0.0.1", Port: 6666, ProtocolCode: "vp1"}

	s1, err := factory.Create(context.Background(), dest)
	require.NoError(t, err)

	now = 200
	factory.MarkDestinationClosed(dest)
	assert.False(t, factory.Validate(dest, s1))

	now = 300
	s2, err := factory.Create(context.Background(), dest)
	require.NoError(t, err)
	assert.True(t, factory.Validate(dest, s2))
}

// S6 - handshake rejection.
func TestSocketResourceFactoryS6HandshakeRejection(t *testing.T) {
	now := int64(100)
	factory := newTestFactory(acceptingDialer("no"), &now)
	dest := Destination{Host: "10.0.0.1", Port: 6666, ProtocolCode: "vp1"}

	s, err := factory.Create(context.Background(), dest)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "vp1")

	stats := factory.Stats()
	assert.Equal(t, int64(1), stats.Created)
	assert.Equal(t, int64(0), stats.Destroyed)
}

func TestSocketResourceFactoryCreateIncrementsCounters(t *testing.T) {
	now := int64(1)
	factory := newTestFactory(acceptingDialer("ok"), &now)
	dest := Destination{Host: "h", Port: 1, ProtocolCode: "vp1"}

	s, err := factory.Create(context.Background(), dest)
	require.NoError(t, err)

	assert.Equal(t, int64(1), factory.Stats().Created)
	assert.Equal(t, int64(0), factory.Stats().Destroyed)

	require.NoError(t, factory.Destroy(dest, s))
	assert.Equal(t, int64(1), factory.Stats().Destroyed)

	// Validate must report false post-Destroy because Close marked s
	// closed, not because the stub conn's addresses went nil (newMinimalConn
	// keeps returning the same non-nil addresses regardless of Close, just
	// like a real *net.TCPConn does).
	assert.False(t, factory.Validate(dest, s))
}

func TestSocketResourceFactoryDestroyUnknownTransportPanics(t *testing.T) {
	now := int64(1)
	factory := newTestFactory(acceptingDialer("ok"), &now)
	dest := Destination{Host: "h", Port: 1, ProtocolCode: "vp1"}

	unknown := newSocketAndStreams(newMinimalConn(), "vp1", 4096)
	assert.Panics(t, func() {
		_ = factory.Destroy(dest, unknown)
	})
}

func TestSocketResourceFactoryValidateMissingTimestampWarnOnly(t *testing.T) {
	now := int64(1)
	factory := newTestFactory(acceptingDialer("ok"), &now)
	dest := Destination{Host: "h", Port: 1, ProtocolCode: "vp1"}

	unknown := newSocketAndStreams(newMinimalConn(), "vp1", 4096)
	assert.True(t, factory.Validate(dest, unknown))
}

func TestSocketResourceFactoryValidateMissingTimestampStrict(t *testing.T) {
	now := int64(1)
	cfg := NewConfig()
	cfg.Dialer = acceptingDialer("ok")
	cfg.StrictValidation = true
	cfg.MonotonicNow = func() time.Time { return time.Unix(0, now) }
	factory := NewSocketResourceFactory(cfg, DefaultSLogger())
	dest := Destination{Host: "h", Port: 1, ProtocolCode: "vp1"}

	unknown := newSocketAndStreams(newMinimalConn(), "vp1", 4096)
	assert.False(t, factory.Validate(dest, unknown))
}

func TestSocketResourceFactoryClose(t *testing.T) {
	now := int64(1)
	cfg := NewConfig()
	cfg.Dialer = acceptingDialer("ok")
	cfg.StrictValidation = true
	cfg.MonotonicNow = func() time.Time { return time.Unix(0, now) }
	factory := NewSocketResourceFactory(cfg, DefaultSLogger())
	dest := Destination{Host: "h", Port: 1, ProtocolCode: "vp1"}

	s, err := factory.Create(context.Background(), dest)
	require.NoError(t, err)

	factory.Close()
	assert.False(t, factory.Validate(dest, s))
}
