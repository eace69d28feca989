// Package protocol encodes and decodes the TF96 line-oriented command protocol.
//
// Every command is an ASCII opcode followed by a decimal argument and a
// newline. Only register reads produce a response line; every other command
// is fire-and-forget.
package protocol

import (
	"strconv"
	"strings"
)

// Opcode is a two-letter command prefix.
type Opcode string

// Wire opcodes understood by the chip.
const (
	OpMasterIntensity Opcode = "CG" // global intensity, 1..15
	OpSelectChannel   Opcode = "CL" // select PWM channel, 0..15
	OpIntensity       Opcode = "CI" // intensity on the selected channel, 0..15
	OpSelectRegister  Opcode = "CA" // select register address
	OpWriteRegister   Opcode = "CW" // write value to the selected register
	OpReadRegister    Opcode = "Cr" // read register; answers "...: 0xNN"
	OpLevel           Opcode = "EL" // auxiliary brightness level
)

// Terminator ends every command and response line.
const Terminator = '\n'

// Opcodes lists every opcode in wire-table order.
var Opcodes = []Opcode{
	OpMasterIntensity,
	OpSelectChannel,
	OpIntensity,
	OpSelectRegister,
	OpWriteRegister,
	OpReadRegister,
	OpLevel,
}

// Encode renders a single command line, e.g. Encode(OpSelectRegister, 6) == "CA6\n".
func Encode(op Opcode, n uint32) []byte {
	buf := make([]byte, 0, len(op)+11)
	buf = append(buf, op...)
	buf = strconv.AppendUint(buf, uint64(n), 10)
	return append(buf, Terminator)
}

// ParseRegisterResponse extracts the value from a register read response.
// The value is the hexadecimal text after the last colon, for example
// "reg: 0x41\n" yields 0x41.
func ParseRegisterResponse(line []byte) (uint32, error) {
	s := string(line)
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return 0, NewProtocolError("response has no colon: "+strconv.Quote(s), nil)
	}

	field := strings.TrimSpace(strings.TrimRight(s[idx+1:], "\r\n"))
	field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
	if field == "" {
		return 0, NewProtocolError("response has no value: "+strconv.Quote(s), nil)
	}

	v, err := strconv.ParseUint(field, 16, 32)
	if err != nil {
		return 0, NewProtocolError("response value is not hexadecimal: "+strconv.Quote(s), err)
	}
	return uint32(v), nil
}
