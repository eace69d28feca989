package led

import (
	"strconv"
	"strings"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

// phaseRegisters holds the address register pair of each phase.
var phaseRegisters = [2][2]uint8{
	{0x02, 0x03},
	{0x0A, 0x0B},
}

// PhaseRegisters returns the register pair written for phase 0 or 1.
func PhaseRegisters(phase int) ([2]uint8, error) {
	if phase < 0 || phase >= len(phaseRegisters) {
		return [2]uint8{}, protocol.NewRangeError("phase", phase, 0, len(phaseRegisters)-1)
	}
	return phaseRegisters[phase], nil
}

// ParseHexValue parses register text such as "1F" or "0x1f".
func ParseHexValue(s string) (uint32, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return 0, invalidValue("hex value", s, err)
	}
	return uint32(v), nil
}
