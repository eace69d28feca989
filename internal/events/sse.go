package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards events of type T into ch for select-loop
// consumers such as SSE handlers. Events are dropped when ch is full.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}

// SubscribeDeviceEvents forwards every device state event into ch and
// returns a single function that removes all subscriptions.
func SubscribeDeviceEvents(bus *Bus, ch chan<- any) func() {
	unsubscribers := []func(){
		SubscribeToChannel[PortStateChangedEvent](bus, ch),
		SubscribeToChannel[ChannelIntensityChangedEvent](bus, ch),
		SubscribeToChannel[MasterIntensityChangedEvent](bus, ch),
		SubscribeToChannel[RegisterWrittenEvent](bus, ch),
		SubscribeToChannel[BlinkPhaseChangedEvent](bus, ch),
		SubscribeToChannel[BlinkConfigChangedEvent](bus, ch),
		SubscribeToChannel[GroupColorChangedEvent](bus, ch),
		SubscribeToChannel[DeviceErrorEvent](bus, ch),
		SubscribeToChannel[DeviceMetricsEvent](bus, ch),
	}
	return func() {
		for _, unsub := range unsubscribers {
			unsub()
		}
	}
}

// EventTypes maps SSE event names to their payload types.
func EventTypes() map[string]any {
	return map[string]any{
		"port-state-changed":        PortStateChangedEvent{},
		"channel-intensity-changed": ChannelIntensityChangedEvent{},
		"master-intensity-changed":  MasterIntensityChangedEvent{},
		"register-written":          RegisterWrittenEvent{},
		"blink-phase-changed":       BlinkPhaseChangedEvent{},
		"blink-config-changed":      BlinkConfigChangedEvent{},
		"group-color-changed":       GroupColorChangedEvent{},
		"device-error":              DeviceErrorEvent{},
		"device-metrics":            DeviceMetricsEvent{},
	}
}
