package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusFireStopsAtHandled(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	first, second := "first", "second"

	assert.True(t, bus.Register(EVENT_CODE_CONTEXT_RESTORED, first, func(SystemEventCode, interface{}, EventContext) bool {
		calls = append(calls, first)
		return true
	}))
	assert.True(t, bus.Register(EVENT_CODE_CONTEXT_RESTORED, second, func(SystemEventCode, interface{}, EventContext) bool {
		calls = append(calls, second)
		return false
	}))
	assert.False(t, bus.Register(EVENT_CODE_CONTEXT_RESTORED, first, nil))

	assert.True(t, bus.Fire(EVENT_CODE_CONTEXT_RESTORED, nil, EventContext{}))
	assert.Equal(t, []string{first}, calls)

	assert.True(t, bus.Unregister(EVENT_CODE_CONTEXT_RESTORED, first))
	assert.False(t, bus.Unregister(EVENT_CODE_CONTEXT_RESTORED, first))
	assert.False(t, bus.Fire(EVENT_CODE_CONTEXT_RESTORED, nil, EventContext{}))
	assert.Equal(t, []string{first, second}, calls)
}

func TestEventBusPassesContext(t *testing.T) {
	bus := NewEventBus()
	var got EventContext
	bus.Register(EVENT_CODE_SHADER_SOURCE_CHANGED, bus, func(_ SystemEventCode, _ interface{}, data EventContext) bool {
		got = data
		return true
	})
	bus.Fire(EVENT_CODE_SHADER_SOURCE_CHANGED, nil, EventContext{Path: "shaders/glow.wgsl"})
	assert.Equal(t, "shaders/glow.wgsl", got.Path)
}
