package led

import "github.com/smazurov/tf96ctl/internal/protocol"

// NumChannels is the number of PWM outputs.
const NumChannels = 16

// Intensity bounds of the chip.
const (
	MaxIntensity     = 15
	DefaultIntensity = 2
)

// Limits bounds the values accepted for channel and master intensity.
type Limits struct {
	ChannelMin int
	ChannelMax int
	MasterMin  int
	MasterMax  int
}

// DefaultLimits returns channel [0,15] and master [1,15].
func DefaultLimits() Limits {
	return Limits{
		ChannelMin: 0,
		ChannelMax: MaxIntensity,
		MasterMin:  1,
		MasterMax:  MaxIntensity,
	}
}

// WithChannelMin returns a copy with the lower channel bound replaced.
// Only 0 and 1 are meaningful; anything else keeps the current bound.
func (l Limits) WithChannelMin(minimum int) Limits {
	if minimum == 0 || minimum == 1 {
		l.ChannelMin = minimum
	}
	return l
}

func (l Limits) checkChannel(channel, intensity int) error {
	if channel < 0 || channel >= NumChannels {
		return protocol.NewRangeError("channel", channel, 0, NumChannels-1)
	}
	if intensity < l.ChannelMin || intensity > l.ChannelMax {
		return protocol.NewRangeError("intensity", intensity, l.ChannelMin, l.ChannelMax)
	}
	return nil
}

func (l Limits) checkMaster(level int) error {
	if level < l.MasterMin || level > l.MasterMax {
		return protocol.NewRangeError("master intensity", level, l.MasterMin, l.MasterMax)
	}
	return nil
}
