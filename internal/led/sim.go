package led

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

// Sim is an in-memory chip that speaks the command protocol.
// It implements protocol.Stream.
type Sim struct {
	mu sync.Mutex

	registers [256]uint32
	channels  [NumChannels]uint8
	channel   int
	register  int
	master    uint8
	level     uint32

	input     []byte
	responses [][]byte
	commands  []string

	writeErr  error
	silent    bool
	malformed bool
}

// NewSim returns a chip with every port enabled and the blink register off.
func NewSim() *Sim {
	s := &Sim{master: MaxIntensity}
	s.registers[RegBlinkControl] = uint32(PhaseOff)
	return s
}

// Write consumes command bytes, executing each complete line.
func (s *Sim) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.input = append(s.input, p...)
	for {
		i := bytes.IndexByte(s.input, protocol.Terminator)
		if i < 0 {
			break
		}
		line := string(s.input[:i])
		s.input = s.input[i+1:]
		s.execute(line)
	}
	return len(p), nil
}

// ReadUntil returns the next queued response, or protocol.ErrTimeout.
func (s *Sim) ReadUntil(_ byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.responses) == 0 {
		return nil, protocol.ErrTimeout
	}
	line := s.responses[0]
	s.responses = s.responses[1:]
	return line, nil
}

func (s *Sim) execute(line string) {
	s.commands = append(s.commands, line)
	if len(line) < 3 {
		return
	}
	n, err := strconv.ParseUint(line[2:], 10, 32)
	if err != nil {
		return
	}

	switch protocol.Opcode(line[:2]) {
	case protocol.OpMasterIntensity:
		s.master = uint8(min(n, MaxIntensity))
	case protocol.OpSelectChannel:
		s.channel = int(n % NumChannels)
	case protocol.OpIntensity:
		s.channels[s.channel] = uint8(min(n, MaxIntensity))
	case protocol.OpSelectRegister:
		s.register = int(n & 0xff)
	case protocol.OpWriteRegister:
		s.registers[s.register] = uint32(n)
	case protocol.OpReadRegister:
		s.respond(int(n & 0xff))
	case protocol.OpLevel:
		s.level = uint32(n)
	}
}

func (s *Sim) respond(addr int) {
	switch {
	case s.silent:
	case s.malformed:
		s.responses = append(s.responses, fmt.Appendf(nil, "reg %02x %x\n", addr, s.registers[addr]))
	default:
		s.responses = append(s.responses, fmt.Appendf(nil, "reg 0x%02x: 0x%02x\n", addr, s.registers[addr]))
	}
}

// Register returns a register's current value.
func (s *Sim) Register(addr uint8) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registers[addr]
}

// SetRegister presets a register.
func (s *Sim) SetRegister(addr uint8, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registers[addr] = value
}

// Channel returns a channel's intensity.
func (s *Sim) Channel(ch int) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[ch]
}

// Master returns the master intensity.
func (s *Sim) Master() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.master
}

// Level returns the last EL value.
func (s *Sim) Level() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Commands returns every command line received, without terminators.
func (s *Sim) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// ResetCommands clears the command log.
func (s *Sim) ResetCommands() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = nil
}

// FailWrites makes every subsequent Write return err; nil restores normal operation.
func (s *Sim) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// SetSilent stops the chip from answering register reads.
func (s *Sim) SetSilent(silent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silent = silent
}

// SetMalformed makes register reads answer without the colon separator.
func (s *Sim) SetMalformed(malformed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.malformed = malformed
}
