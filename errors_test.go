// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnreachableStoreError(t *testing.T) {
	node := Node{ID: 1, Host: "h", Port: 1}
	inner := errors.New("connection refused")
	err := &UnreachableStoreError{Node: node, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "unreachable")

	var target *UnreachableStoreError
	assert.True(t, errors.As(err, &target))
}

func TestApplicationFaultError(t *testing.T) {
	node := Node{ID: 1, Host: "h", Port: 1}
	inner := errors.New("obsolete version")
	err := &ApplicationFaultError{Node: node, Err: inner}
	assert.ErrorIs(t, err, inner)

	var target *ApplicationFaultError
	assert.True(t, errors.As(err, &target))
}

func TestInsufficientOperationalNodesError(t *testing.T) {
	err := &InsufficientOperationalNodesError{OperationName: "Get", Required: 2, Successes: 0}
	assert.Equal(t, "2 Gets required, but 0 succeeded", err.Error())
}

func TestProtocolRejectedError(t *testing.T) {
	err := &ProtocolRejectedError{ProtocolCode: "vp1"}
	assert.Contains(t, err.Error(), "vp1")
}

func TestProtocolUnknownResponseError(t *testing.T) {
	err := &ProtocolUnknownResponseError{ProtocolCode: "vp1", Response: []byte("xx")}
	assert.Contains(t, err.Error(), "vp1")
	assert.Contains(t, err.Error(), "xx")
}

func TestHandshakeIOError(t *testing.T) {
	inner := errors.New("broken pipe")
	err := &HandshakeIOError{Err: inner}
	assert.ErrorIs(t, err, inner)
}
