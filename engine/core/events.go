package core

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Resized/resolution changed.
	/* Context usage:
	 * width := data.U32[0]
	 * height := data.U32[1]
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// The graphics device dropped its context; every device resource is gone.
	EVENT_CODE_CONTEXT_LOST SystemEventCode = 0x10

	// The graphics device is usable again and resources must be re-created.
	EVENT_CODE_CONTEXT_RESTORED SystemEventCode = 0x11

	// A watched shader source changed on disk.
	/* Context usage:
	 * path := data.Path
	 */
	EVENT_CODE_SHADER_SOURCE_CHANGED SystemEventCode = 0x12

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	U32  [4]uint32
	Path string
	Data interface{}
}

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches engine events synchronously on the calling goroutine.
type EventBus struct {
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
}

// Register to listen for when events are sent with the provided code. A listener
// can only be registered once per code; a duplicate returns false.
func (eb *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	for _, e := range eb.registered[code] {
		if e.listener == listener {
			LogWarn("event %d: listener already registered", code)
			return false
		}
	}
	eb.registered[code] = append(eb.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister removes the listener for code. Returns false when it was not registered.
func (eb *EventBus) Unregister(code SystemEventCode, listener interface{}) bool {
	events := eb.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eb.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Fire sends an event to listeners of the given code. If a handler returns
// true the event is considered handled and is not passed on.
func (eb *EventBus) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	for _, e := range eb.registered[code] {
		if e.callback(code, sender, context) {
			return true
		}
	}
	return false
}

func (eb *EventBus) Shutdown() {
	eb.registered = make(map[SystemEventCode][]*registeredEvent)
}
