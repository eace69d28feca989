// Package metrics provides Prometheus metrics for the LED driver link.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tf96",
		Subsystem: "protocol",
		Name:      "commands_total",
		Help:      "Command lines written to the device, by opcode",
	}, []string{"opcode"})

	registerReads = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tf96",
		Subsystem: "protocol",
		Name:      "register_read_seconds",
		Help:      "Round-trip latency of successful register reads",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	deviceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tf96",
		Subsystem: "protocol",
		Name:      "errors_total",
		Help:      "Device-layer errors, by error code",
	}, []string{"code"})

	blinkToggles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tf96",
		Subsystem: "blink",
		Name:      "toggles_total",
		Help:      "Blink phase toggles written to the device",
	})

	blinkPhase = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tf96",
		Subsystem: "blink",
		Name:      "phase_on",
		Help:      "Current blink phase (1 = on, 0 = off)",
	})

	masterIntensity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tf96",
		Subsystem: "device",
		Name:      "master_intensity",
		Help:      "Last commanded master intensity",
	})

	channelIntensity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tf96",
		Subsystem: "device",
		Name:      "channel_intensity",
		Help:      "Last commanded per-channel intensity",
	}, []string{"channel"})

	portEnabled = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tf96",
		Subsystem: "device",
		Name:      "port_enabled",
		Help:      "Last observed port state (1 = enabled)",
	}, []string{"port"})

	// Local mirror for the SSE exporter.
	snapshot   = DeviceMetrics{Commands: map[string]uint64{}, Errors: map[string]uint64{}}
	snapshotMu sync.RWMutex
)

// DeviceMetrics holds running totals for the device link.
type DeviceMetrics struct {
	Commands      map[string]uint64
	Errors        map[string]uint64
	RegisterReads uint64
	BlinkToggles  uint64
}

// ObserveCommand counts one command line for opcode.
func ObserveCommand(opcode string) {
	commandsTotal.WithLabelValues(opcode).Inc()
	update(func(m *DeviceMetrics) { m.Commands[opcode]++ })
}

// ObserveRegisterRead records a successful register read.
func ObserveRegisterRead(d time.Duration) {
	registerReads.Observe(d.Seconds())
	update(func(m *DeviceMetrics) { m.RegisterReads++ })
}

// IncDeviceError counts a device-layer error by code.
func IncDeviceError(code string) {
	deviceErrors.WithLabelValues(code).Inc()
	update(func(m *DeviceMetrics) { m.Errors[code]++ })
}

// IncBlinkToggle counts a blink phase toggle.
func IncBlinkToggle() {
	blinkToggles.Inc()
	update(func(m *DeviceMetrics) { m.BlinkToggles++ })
}

// SetBlinkPhase sets the current blink phase.
func SetBlinkPhase(on bool) {
	blinkPhase.Set(boolToFloat(on))
}

// SetMasterIntensity sets the last commanded master intensity.
func SetMasterIntensity(level int) {
	masterIntensity.Set(float64(level))
}

// SetChannelIntensity sets the last commanded intensity of a channel.
func SetChannelIntensity(channel, level int) {
	channelIntensity.WithLabelValues(strconv.Itoa(channel)).Set(float64(level))
}

// SetPortEnabled sets the last observed state of a port.
func SetPortEnabled(port string, enabled bool) {
	portEnabled.WithLabelValues(port).Set(boolToFloat(enabled))
}

// GetDeviceMetrics returns a copy of the running totals.
func GetDeviceMetrics() DeviceMetrics {
	snapshotMu.RLock()
	defer snapshotMu.RUnlock()
	out := DeviceMetrics{
		Commands:      make(map[string]uint64, len(snapshot.Commands)),
		Errors:        make(map[string]uint64, len(snapshot.Errors)),
		RegisterReads: snapshot.RegisterReads,
		BlinkToggles:  snapshot.BlinkToggles,
	}
	for k, v := range snapshot.Commands {
		out.Commands[k] = v
	}
	for k, v := range snapshot.Errors {
		out.Errors[k] = v
	}
	return out
}

func update(fn func(*DeviceMetrics)) {
	snapshotMu.Lock()
	defer snapshotMu.Unlock()
	fn(&snapshot)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
