package led

import (
	"time"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

// RegBlinkControl receives the phase sentinel on every toggle.
const RegBlinkControl uint8 = 0x0F

// Phase is a blink phase. Its value is the sentinel written to RegBlinkControl.
type Phase uint32

// Blink phases.
const (
	PhaseOff Phase = 0x41
	PhaseOn  Phase = 0x43
)

func (p Phase) String() string {
	if p == PhaseOn {
		return "on"
	}
	return "off"
}

// Toggle returns the opposite phase.
func (p Phase) Toggle() Phase {
	if p == PhaseOn {
		return PhaseOff
	}
	return PhaseOn
}

// MaxBlinkControl is the upper bound of the blink speed control.
const MaxBlinkControl = 10

// HalfPeriodFromControl converts the speed control in [0,10] to a half-period:
// 0 gives one second, 10 gives zero. Higher values blink faster.
func HalfPeriodFromControl(v int) (time.Duration, error) {
	if v < 0 || v > MaxBlinkControl {
		return 0, protocol.NewRangeError("blink control", v, 0, MaxBlinkControl)
	}
	return time.Duration(MaxBlinkControl-v) * (time.Second / MaxBlinkControl), nil
}

// BlinkState is the blink scheduler. It is driven entirely by Tick; the
// caller supplies the clock. Construct it with NewBlinkState.
type BlinkState struct {
	Enabled    bool
	Control    int
	HalfPeriod time.Duration
	Phase      Phase
	LastToggle time.Time
}

// NewBlinkState returns a disabled scheduler in PhaseOff with a one-second half-period.
func NewBlinkState() BlinkState {
	return BlinkState{
		HalfPeriod: time.Second,
		Phase:      PhaseOff,
	}
}

// SetEnabled starts or stops toggling. Stopping writes nothing: the chip
// stays in whichever phase it was last switched to.
func (b *BlinkState) SetEnabled(enabled bool) {
	b.Enabled = enabled
}

// SetControl updates the half-period from the speed control.
func (b *BlinkState) SetControl(v int) error {
	hp, err := HalfPeriodFromControl(v)
	if err != nil {
		return err
	}
	b.Control = v
	b.HalfPeriod = hp
	return nil
}

// Tick advances the scheduler to now. When enabled and at least one
// half-period has elapsed since the last toggle, it writes the opposite
// phase to the chip and reports true. A failed write leaves the state
// untouched so the next tick retries.
func (b *BlinkState) Tick(now time.Time, w RegisterWriter) (bool, error) {
	if !b.Enabled {
		return false, nil
	}
	if !b.LastToggle.IsZero() && now.Sub(b.LastToggle) < b.HalfPeriod {
		return false, nil
	}

	next := b.Phase.Toggle()
	if err := w.WriteRegister(RegBlinkControl, uint32(next)); err != nil {
		return false, err
	}
	b.Phase = next
	b.LastToggle = now
	return true, nil
}
