// Package led models the TF96 LED driver: port enable bits, channel and
// master intensity, color mapping onto LED groups, and the blink scheduler.
package led

// RegisterWriter is the single operation the blink scheduler needs.
type RegisterWriter interface {
	WriteRegister(addr uint8, value uint32) error
}

// Controller abstracts the command link to the chip.
// *protocol.Conn is the production implementation.
type Controller interface {
	RegisterWriter

	// ReadRegister blocks for the chip's response line.
	ReadRegister(addr uint8) (uint32, error)

	// SetChannelIntensity selects channel and sets its intensity.
	SetChannelIntensity(channel, intensity uint8) error

	// SetMasterIntensity scales every channel at once.
	SetMasterIntensity(level uint8) error

	// SetLevel sends the auxiliary brightness command.
	SetLevel(level uint32) error
}
