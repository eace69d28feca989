package events

// Event type constants for kelindar/event.
const (
	TypePortStateChanged uint32 = iota + 1
	TypeChannelIntensityChanged
	TypeMasterIntensityChanged
	TypeRegisterWritten
	TypeBlinkPhaseChanged
	TypeBlinkConfigChanged
	TypeGroupColorChanged
	TypeDeviceError
	TypeDeviceMetrics
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PortStateChangedEvent is published after a port enable bit was written.
type PortStateChangedEvent struct {
	Port      int    `json:"port" example:"3" doc:"Port number, 0..15"`
	Enabled   bool   `json:"enabled" example:"true" doc:"Whether the port is enabled"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PortStateChangedEvent.
func (e PortStateChangedEvent) Type() uint32 { return TypePortStateChanged }

// ChannelIntensityChangedEvent is published after a channel intensity was commanded.
type ChannelIntensityChangedEvent struct {
	Channel   int    `json:"channel" example:"2" doc:"PWM channel, 0..15"`
	Intensity int    `json:"intensity" example:"15" doc:"Commanded intensity"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ChannelIntensityChangedEvent.
func (e ChannelIntensityChangedEvent) Type() uint32 { return TypeChannelIntensityChanged }

// MasterIntensityChangedEvent is published after the master intensity was commanded.
type MasterIntensityChangedEvent struct {
	Level     int    `json:"level" example:"15" doc:"Master intensity, 1..15"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for MasterIntensityChangedEvent.
func (e MasterIntensityChangedEvent) Type() uint32 { return TypeMasterIntensityChanged }

// RegisterWrittenEvent is published after a raw register write.
type RegisterWrittenEvent struct {
	Register  string `json:"register" example:"0x0f" doc:"Register address"`
	Value     uint32 `json:"value" example:"67" doc:"Value written"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for RegisterWrittenEvent.
func (e RegisterWrittenEvent) Type() uint32 { return TypeRegisterWritten }

// BlinkPhaseChangedEvent is published each time the blink scheduler toggles.
type BlinkPhaseChangedEvent struct {
	Phase     string `json:"phase" example:"on" doc:"New blink phase: on or off"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BlinkPhaseChangedEvent.
func (e BlinkPhaseChangedEvent) Type() uint32 { return TypeBlinkPhaseChanged }

// BlinkConfigChangedEvent is published when blinking is enabled, disabled or retimed.
type BlinkConfigChangedEvent struct {
	Enabled      bool   `json:"enabled" example:"true" doc:"Whether blinking is active"`
	HalfPeriodMs int64  `json:"half_period_ms" example:"500" doc:"Time spent in each phase"`
	Timestamp    string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BlinkConfigChangedEvent.
func (e BlinkConfigChangedEvent) Type() uint32 { return TypeBlinkConfigChanged }

// GroupColorChangedEvent is published after a color was applied to an LED group.
type GroupColorChangedEvent struct {
	Group     string `json:"group" example:"led1" doc:"LED group name"`
	Color     string `json:"color" example:"#ff8000" doc:"Requested color"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for GroupColorChangedEvent.
func (e GroupColorChangedEvent) Type() uint32 { return TypeGroupColorChanged }

// DeviceErrorEvent is published when a background device operation fails.
type DeviceErrorEvent struct {
	Code      string `json:"code" example:"STREAM_ERROR" doc:"Error code"`
	Operation string `json:"operation" example:"blink" doc:"Operation that failed"`
	Error     string `json:"error" doc:"Detailed error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceErrorEvent.
func (e DeviceErrorEvent) Type() uint32 { return TypeDeviceError }

// DeviceMetricsEvent carries periodic protocol counters.
type DeviceMetricsEvent struct {
	EventType     string            `json:"type"`
	Commands      map[string]uint64 `json:"commands"`
	Errors        map[string]uint64 `json:"errors"`
	RegisterReads uint64            `json:"register_reads"`
	BlinkToggles  uint64            `json:"blink_toggles"`
}

// Type returns the event type identifier for DeviceMetricsEvent.
func (e DeviceMetricsEvent) Type() uint32 { return TypeDeviceMetrics }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"api" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
