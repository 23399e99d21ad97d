// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeDestination(t *testing.T) {
	n := Node{ID: 1, Host: "10.0.0.1", Port: 6666, ProtocolCode: "vp1"}
	assert.Equal(t, Destination{Host: "10.0.0.1", Port: 6666, ProtocolCode: "vp1"}, n.Destination())
}

func TestNodeDestinationSharedAcrossNodes(t *testing.T) {
	n1 := Node{ID: 1, Host: "10.0.0.1", Port: 6666, ProtocolCode: "vp1"}
	n2 := Node{ID: 2, Host: "10.0.0.1", Port: 6666, ProtocolCode: "vp1"}
	assert.Equal(t, n1.Destination(), n2.Destination())
	assert.NotEqual(t, n1, n2)
}

func TestNodeComparable(t *testing.T) {
	set := map[Node]bool{}
	n := Node{ID: 1, Host: "h", Port: 1, ProtocolCode: "vp1"}
	set[n] = true
	assert.True(t, set[Node{ID: 1, Host: "h", Port: 1, ProtocolCode: "vp1"}])
}

func TestNodeString(t *testing.T) {
	n := Node{ID: 42, Host: "h", Port: 1234}
	assert.Contains(t, n.String(), "42")
	assert.Contains(t, n.String(), "h:1234")
}

func TestDestinationString(t *testing.T) {
	d := Destination{Host: "h", Port: 1234, ProtocolCode: "vp1"}
	assert.Equal(t, "h:1234/vp1", d.String())
}

func TestKeyString(t *testing.T) {
	k := Key("mykey")
	assert.Equal(t, "mykey", k.String())
}
