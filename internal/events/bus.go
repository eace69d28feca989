package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(PortStateChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the static type, so unwrap the interface first
	switch e := ev.(type) {
	case PortStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case ChannelIntensityChangedEvent:
		event.Publish(b.dispatcher, e)
	case MasterIntensityChangedEvent:
		event.Publish(b.dispatcher, e)
	case RegisterWrittenEvent:
		event.Publish(b.dispatcher, e)
	case BlinkPhaseChangedEvent:
		event.Publish(b.dispatcher, e)
	case BlinkConfigChangedEvent:
		event.Publish(b.dispatcher, e)
	case GroupColorChangedEvent:
		event.Publish(b.dispatcher, e)
	case DeviceErrorEvent:
		event.Publish(b.dispatcher, e)
	case DeviceMetricsEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e BlinkPhaseChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(PortStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ChannelIntensityChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(MasterIntensityChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RegisterWrittenEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BlinkPhaseChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BlinkConfigChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(GroupColorChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DeviceErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DeviceMetricsEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
