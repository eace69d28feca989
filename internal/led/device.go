package led

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/tf96ctl/internal/events"
	"github.com/smazurov/tf96ctl/internal/metrics"
	"github.com/smazurov/tf96ctl/internal/protocol"
)

// MaxLevel bounds the auxiliary EL brightness command.
const MaxLevel = MaxIntensity

// Publisher receives device state events. *events.Bus implements it.
type Publisher interface {
	Publish(ev events.Event)
}

// Options configures a Device.
type Options struct {
	Limits Limits
	Bus    Publisher
	Logger *slog.Logger
	// Closer is closed by Device.Close, typically the serial port.
	Closer io.Closer
}

// Levels are the intensities last commanded through this session.
// The chip has no intensity read-back; -1 means never commanded.
type Levels struct {
	Channels [NumChannels]int `json:"channels" doc:"Per-channel intensity, -1 if never set"`
	Master   int              `json:"master" doc:"Master intensity, -1 if never set"`
	Level    int              `json:"level" doc:"EL brightness level, -1 if never set"`
}

// RegisterValue is one register read.
type RegisterValue struct {
	Address string `json:"address" example:"0x0f" doc:"Register address"`
	Value   uint32 `json:"value" example:"65" doc:"Register value"`
	Hex     string `json:"hex" example:"0x41" doc:"Register value in hex"`
}

// Device is a control session for one chip. Every method holds the session
// lock for its whole duration, so read-modify-write sequences and blink
// ticks never interleave on the link.
type Device struct {
	mu     sync.Mutex
	ctrl   Controller
	closer io.Closer
	limits Limits
	bus    Publisher
	logger *slog.Logger

	channels [NumChannels]int
	master   int
	level    int
	blink    BlinkState
}

// NewDevice creates a session over ctrl.
func NewDevice(ctrl Controller, opts Options) *Device {
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	d := &Device{
		ctrl:   ctrl,
		closer: opts.Closer,
		limits: opts.Limits,
		bus:    opts.Bus,
		logger: opts.Logger,
		master: -1,
		level:  -1,
		blink:  NewBlinkState(),
	}
	for i := range d.channels {
		d.channels[i] = -1
	}
	return d
}

// Limits returns the accepted intensity bounds.
func (d *Device) Limits() Limits {
	return d.limits
}

// Close releases the underlying link.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Init establishes a known baseline: every channel is set to intensity,
// then every port state is read back.
func (d *Device) Init(ctx context.Context, intensity int) ([]PortState, error) {
	if err := d.limits.checkChannel(0, intensity); err != nil {
		return nil, err
	}
	for ch := range NumChannels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.SetChannelIntensity(ch, intensity); err != nil {
			return nil, fmt.Errorf("initialize channel %d: %w", ch, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	states, err := d.PortStates()
	if err != nil {
		return nil, fmt.Errorf("read port states: %w", err)
	}
	d.logger.Info("Device initialized", "intensity", intensity, "enabled_ports", CountEnabled(states))
	return states, nil
}

// ReadRegister reads one register.
func (d *Device) ReadRegister(addr int) (uint32, error) {
	if err := checkAddr(addr); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctrl.ReadRegister(uint8(addr))
}

// WriteRegister writes value to one register.
func (d *Device) WriteRegister(addr int, value int64) error {
	if err := checkAddr(addr); err != nil {
		return err
	}
	if value < 0 || value > math.MaxUint32 {
		return &protocol.Error{Code: protocol.ErrCodeRange, Message: fmt.Sprintf("register value %d outside [0,%d]", value, uint32(math.MaxUint32))}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegister(uint8(addr), uint32(value))
}

func (d *Device) writeRegister(addr uint8, value uint32) error {
	if err := d.ctrl.WriteRegister(addr, value); err != nil {
		return err
	}
	d.publish(events.RegisterWrittenEvent{
		Register:  fmt.Sprintf("0x%02x", addr),
		Value:     value,
		Timestamp: timestamp(),
	})
	return nil
}

// DumpRegisters reads every register in [from, to].
func (d *Device) DumpRegisters(ctx context.Context, from, to int) ([]RegisterValue, error) {
	if err := checkAddr(from); err != nil {
		return nil, err
	}
	if err := checkAddr(to); err != nil {
		return nil, err
	}
	if to < from {
		return nil, protocol.NewRangeError("register range end", to, from, math.MaxUint8)
	}

	out := make([]RegisterValue, 0, to-from+1)
	for addr := from; addr <= to; addr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := d.ReadRegister(addr)
		if err != nil {
			return nil, fmt.Errorf("read register 0x%02x: %w", addr, err)
		}
		out = append(out, RegisterValue{
			Address: fmt.Sprintf("0x%02x", addr),
			Value:   v,
			Hex:     fmt.Sprintf("0x%02x", v),
		})
	}
	return out, nil
}

// PortEnabled reports whether port's enable bit is cleared.
func (d *Device) PortEnabled(port int) (bool, error) {
	reg, bit, err := ResolvePort(port)
	if err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.ctrl.ReadRegister(reg)
	if err != nil {
		return false, err
	}
	enabled := bitEnabled(v, bit)
	metrics.SetPortEnabled(portLabel(port), enabled)
	return enabled, nil
}

// SetPortEnabled reads the port's register, clears (enable) or sets
// (disable) its bit and writes the register back.
func (d *Device) SetPortEnabled(port int, enabled bool) error {
	reg, bit, err := ResolvePort(port)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.ctrl.ReadRegister(reg)
	if err != nil {
		return err
	}
	next := withPortEnabled(v, bit, enabled)
	if err := d.writeRegister(reg, next); err != nil {
		return err
	}

	metrics.SetPortEnabled(portLabel(port), enabled)
	d.logger.Info("Port state changed", "port", port, "enabled", enabled, "reg", fmt.Sprintf("0x%02x", reg), "value", fmt.Sprintf("0x%02x", next))
	d.publish(events.PortStateChangedEvent{
		Port:      port,
		Enabled:   enabled,
		Timestamp: timestamp(),
	})
	return nil
}

// PortStates reads both enable registers and decodes all sixteen ports.
func (d *Device) PortStates() ([]PortState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	low, err := d.ctrl.ReadRegister(RegPortsLow)
	if err != nil {
		return nil, err
	}
	high, err := d.ctrl.ReadRegister(RegPortsHigh)
	if err != nil {
		return nil, err
	}

	states := make([]PortState, NumPorts)
	for port := range NumPorts {
		v := low
		if port >= 8 {
			v = high
		}
		states[port] = portState(port, v)
		metrics.SetPortEnabled(portLabel(port), states[port].Enabled)
	}
	return states, nil
}

// SetChannelIntensity sets one channel's intensity.
func (d *Device) SetChannelIntensity(channel, intensity int) error {
	if err := d.limits.checkChannel(channel, intensity); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setChannel(channel, intensity)
}

func (d *Device) setChannel(channel, intensity int) error {
	if err := d.ctrl.SetChannelIntensity(uint8(channel), uint8(intensity)); err != nil {
		return err
	}
	d.channels[channel] = intensity
	metrics.SetChannelIntensity(channel, intensity)
	d.logger.Debug("Channel intensity set", "channel", channel, "intensity", intensity)
	d.publish(events.ChannelIntensityChangedEvent{
		Channel:   channel,
		Intensity: intensity,
		Timestamp: timestamp(),
	})
	return nil
}

// SetMasterIntensity scales every channel at once.
func (d *Device) SetMasterIntensity(level int) error {
	if err := d.limits.checkMaster(level); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ctrl.SetMasterIntensity(uint8(level)); err != nil {
		return err
	}
	d.master = level
	metrics.SetMasterIntensity(level)
	d.logger.Debug("Master intensity set", "level", level)
	d.publish(events.MasterIntensityChangedEvent{Level: level, Timestamp: timestamp()})
	return nil
}

// SetLevel sends the auxiliary EL brightness command.
func (d *Device) SetLevel(level int) error {
	if level < 0 || level > MaxLevel {
		return protocol.NewRangeError("level", level, 0, MaxLevel)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ctrl.SetLevel(uint32(level)); err != nil {
		return err
	}
	d.level = level
	return nil
}

// Levels returns the last commanded intensities.
func (d *Device) Levels() Levels {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Levels{Channels: d.channels, Master: d.master, Level: d.level}
}

// ApplyColor maps c to device levels once and sets every port of the
// selected group, or of all groups for AllGroups.
func (d *Device) ApplyColor(group string, c RGB) (Triple, error) {
	groups, err := SelectGroups(group)
	if err != nil {
		return Triple{}, err
	}
	t := RGBToDevice(c)
	for _, v := range t {
		if err := d.limits.checkChannel(0, int(v)); err != nil {
			return Triple{}, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range groups {
		for i, port := range g.Ports() {
			if err := d.setChannel(port, int(t[i])); err != nil {
				return Triple{}, fmt.Errorf("group %s port %d: %w", g.Name, port, err)
			}
		}
	}

	d.logger.Info("Color applied", "group", group, "color", c.Hex(), "levels", t)
	d.publish(events.GroupColorChangedEvent{Group: group, Color: c.Hex(), Timestamp: timestamp()})
	return t, nil
}

// GroupColor reverse-maps a group's commanded levels to a color.
// Channels never commanded count as zero.
func (d *Device) GroupColor(name string) (RGB, error) {
	groups, err := SelectGroups(name)
	if err != nil {
		return RGB{}, err
	}
	if len(groups) != 1 {
		return RGB{}, &protocol.Error{Code: protocol.ErrCodeRange, Message: "color is only defined for a single group"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	var t Triple
	for i, port := range groups[0].Ports() {
		t[i] = uint8(max(d.channels[port], 0))
	}
	return DeviceToRGB(t), nil
}

// SetPhaseAddresses parses two hex values and writes them to the register
// pair of phase 0 or 1.
func (d *Device) SetPhaseAddresses(phase int, first, second string) error {
	regs, err := PhaseRegisters(phase)
	if err != nil {
		return err
	}
	a, err := ParseHexValue(first)
	if err != nil {
		return err
	}
	b, err := ParseHexValue(second)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(regs[0], a); err != nil {
		return err
	}
	if err := d.writeRegister(regs[1], b); err != nil {
		return err
	}
	d.logger.Info("Phase addresses set", "phase", phase, "first", a, "second", b)
	return nil
}

// Blink returns a copy of the blink scheduler state.
func (d *Device) Blink() BlinkState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.blink
}

// SetBlink enables or disables blinking and sets the speed control.
func (d *Device) SetBlink(enabled bool, control int) error {
	hp, err := HalfPeriodFromControl(control)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := d.blink.Enabled != enabled || d.blink.HalfPeriod != hp
	d.blink.SetEnabled(enabled)
	_ = d.blink.SetControl(control)
	if !changed {
		return nil
	}

	d.logger.Info("Blink updated", "enabled", enabled, "half_period", hp)
	d.publish(events.BlinkConfigChangedEvent{
		Enabled:      enabled,
		HalfPeriodMs: hp.Milliseconds(),
		Timestamp:    timestamp(),
	})
	return nil
}

// Tick advances the blink scheduler; see BlinkState.Tick.
func (d *Device) Tick(now time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	toggled, err := d.blink.Tick(now, d.ctrl)
	if err != nil || !toggled {
		return toggled, err
	}
	metrics.IncBlinkToggle()
	metrics.SetBlinkPhase(d.blink.Phase == PhaseOn)
	return true, nil
}

func (d *Device) publish(ev events.Event) {
	if d.bus != nil {
		d.bus.Publish(ev)
	}
}

func checkAddr(addr int) error {
	if addr < 0 || addr > math.MaxUint8 {
		return protocol.NewRangeError("register", addr, 0, math.MaxUint8)
	}
	return nil
}

func portLabel(port int) string {
	return strconv.Itoa(port)
}

// CountEnabled returns how many of states are enabled.
func CountEnabled(states []PortState) int {
	n := 0
	for _, s := range states {
		if s.Enabled {
			n++
		}
	}
	return n
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}
