// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineStampsOperationID(t *testing.T) {
	p1 := NewPipeline(&PipelineData{}, nil)
	p2 := NewPipeline(&PipelineData{}, nil)
	assert.NotEmpty(t, p1.OperationID)
	assert.NotEqual(t, p1.OperationID, p2.OperationID)
}

func TestPipelineDispatchTerminatesOnCompleted(t *testing.T) {
	data := &PipelineData{}
	p := NewPipeline(data, nil)

	var ran []Event
	p.Register(Event("start"), ActionFunc(func(pipeline *Pipeline, d *PipelineData) {
		ran = append(ran, Event("start"))
		pipeline.AddEvent(EventCompleted)
	}))

	last := p.Dispatch(Event("start"))
	assert.Equal(t, EventCompleted, last)
	assert.Equal(t, []Event{Event("start")}, ran)
}

func TestPipelineDispatchTerminatesOnError(t *testing.T) {
	data := &PipelineData{}
	p := NewPipeline(data, nil)

	p.Register(Event("start"), ActionFunc(func(pipeline *Pipeline, d *PipelineData) {
		pipeline.AddEvent(EventError)
	}))

	last := p.Dispatch(Event("start"))
	assert.Equal(t, EventError, last)
}

func TestPipelineDispatchChainsActions(t *testing.T) {
	data := &PipelineData{}
	p := NewPipeline(data, nil)

	var order []string
	p.Register(Event("a"), ActionFunc(func(pipeline *Pipeline, d *PipelineData) {
		order = append(order, "a")
		pipeline.AddEvent(Event("b"))
	}))
	p.Register(Event("b"), ActionFunc(func(pipeline *Pipeline, d *PipelineData) {
		order = append(order, "b")
		pipeline.AddEvent(EventCompleted)
	}))

	last := p.Dispatch(Event("a"))
	require.Equal(t, EventCompleted, last)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestPipelineDispatchDrainsEmptyQueueWithoutAction(t *testing.T) {
	data := &PipelineData{}
	p := NewPipeline(data, nil)

	last := p.Dispatch(Event("unregistered"))
	assert.Equal(t, Event("unregistered"), last)
}

func TestPipelineDataMethodsAccessible(t *testing.T) {
	data := &PipelineData{Key: Key("k")}
	p := NewPipeline(data, nil)
	assert.Same(t, data, p.Data())
}
