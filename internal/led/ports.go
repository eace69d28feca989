package led

import (
	"fmt"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

// Port enable registers. A cleared bit means the port is enabled.
const (
	RegPortsLow  uint8 = 0x06 // ports 0..7
	RegPortsHigh uint8 = 0x07 // ports 8..15
	NumPorts           = 16
)

// ResolvePort maps a port to its enable register and bit position.
func ResolvePort(port int) (reg uint8, bit uint, err error) {
	if port < 0 || port >= NumPorts {
		return 0, 0, protocol.NewRangeError("port", port, 0, NumPorts-1)
	}
	if port < 8 {
		return RegPortsLow, uint(port), nil
	}
	return RegPortsHigh, uint(port - 8), nil
}

// bitEnabled applies the active-low convention.
func bitEnabled(value uint32, bit uint) bool {
	return value&(1<<bit) == 0
}

// withPortEnabled returns value with bit cleared (enabled) or set (disabled).
func withPortEnabled(value uint32, bit uint, enabled bool) uint32 {
	if enabled {
		return value &^ (1 << bit)
	}
	return value | (1 << bit)
}

// PortState is the enable state of one port.
type PortState struct {
	Port     int    `json:"port" example:"3" doc:"Port number, 0..15"`
	Register string `json:"register" example:"0x06" doc:"Enable register holding this port"`
	Bit      int    `json:"bit" example:"3" doc:"Bit position within the register"`
	Enabled  bool   `json:"enabled" example:"true" doc:"True when the bit is cleared"`
}

func portState(port int, value uint32) PortState {
	reg, bit, _ := ResolvePort(port)
	return PortState{
		Port:     port,
		Register: fmt.Sprintf("0x%02x", reg),
		Bit:      int(bit),
		Enabled:  bitEnabled(value, bit),
	}
}
