package protocol

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/tf96ctl/internal/metrics"
)

// Conn speaks the command protocol over a Stream. All methods are safe for
// concurrent use: a command and its response line are never interleaved
// with another caller's traffic.
type Conn struct {
	mu     sync.Mutex
	stream Stream
	logger *slog.Logger
}

// NewConn creates a protocol connection over an already-open stream.
func NewConn(stream Stream, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		stream: stream,
		logger: logger,
	}
}

// WriteRegister selects addr and writes value to it as two separate commands.
// No acknowledgment is read.
func (c *Conn) WriteRegister(addr uint8, value uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(OpSelectRegister, uint32(addr)); err != nil {
		return err
	}
	if err := c.send(OpWriteRegister, value); err != nil {
		return err
	}
	c.logger.Debug("Register written", "reg", hexByte(addr), "value", value)
	return nil
}

// ReadRegister requests addr and blocks for the response line.
func (c *Conn) ReadRegister(addr uint8) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	line, err := c.query(OpReadRegister, uint32(addr))
	if err != nil {
		return 0, err
	}

	val, err := ParseRegisterResponse(line)
	if err != nil {
		metrics.IncDeviceError(string(ErrCodeProtocol))
		c.logger.Warn("Malformed register response", "reg", hexByte(addr), "response", string(line))
		return 0, err
	}

	metrics.ObserveRegisterRead(time.Since(start))
	c.logger.Debug("Register read", "reg", hexByte(addr), "value", "0x"+strconv.FormatUint(uint64(val), 16))
	return val, nil
}

// SetChannelIntensity selects channel and sets its intensity as two separate commands.
func (c *Conn) SetChannelIntensity(channel, intensity uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(OpSelectChannel, uint32(channel)); err != nil {
		return err
	}
	return c.send(OpIntensity, uint32(intensity))
}

// SetMasterIntensity scales all channels at once.
func (c *Conn) SetMasterIntensity(level uint8) error {
	return c.Send(OpMasterIntensity, uint32(level))
}

// SetLevel sends the auxiliary brightness command.
func (c *Conn) SetLevel(level uint32) error {
	return c.Send(OpLevel, level)
}

// Send writes a single command line.
func (c *Conn) Send(op Opcode, n uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(op, n)
}

// Raw writes a free-form command line and, for register reads, returns the
// response line. Used by the interactive console. A line whose opcode only
// differs in case from a known one is rejected without being sent.
func (c *Conn) Raw(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if err := checkOpcodeCase(line); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.write([]byte(line + string(Terminator))); err != nil {
		return "", err
	}
	metrics.ObserveCommand(opcodeOf(line))
	if !strings.HasPrefix(line, string(OpReadRegister)) {
		return "", nil
	}

	resp, err := c.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(resp), "\r\n"), nil
}

func (c *Conn) send(op Opcode, n uint32) error {
	if err := c.write(Encode(op, n)); err != nil {
		return err
	}
	metrics.ObserveCommand(string(op))
	return nil
}

func (c *Conn) query(op Opcode, n uint32) ([]byte, error) {
	if err := c.send(op, n); err != nil {
		return nil, err
	}
	return c.readLine()
}

func (c *Conn) write(b []byte) error {
	c.logger.Debug("tx", "line", strings.TrimRight(string(b), "\n"))
	if _, err := c.stream.Write(b); err != nil {
		metrics.IncDeviceError(string(ErrCodeStream))
		return NewStreamError("write failed", err)
	}
	return nil
}

func (c *Conn) readLine() ([]byte, error) {
	line, err := c.stream.ReadUntil(Terminator)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			metrics.IncDeviceError(string(ErrCodeProtocol))
			return nil, NewProtocolError("no response before timeout", err)
		}
		metrics.IncDeviceError(string(ErrCodeStream))
		return nil, NewStreamError("read failed", err)
	}
	c.logger.Debug("rx", "line", strings.TrimRight(string(line), "\r\n"))
	return line, nil
}

func opcodeOf(line string) string {
	if len(line) < 2 {
		return line
	}
	return line[:2]
}

func checkOpcodeCase(line string) error {
	op := opcodeOf(line)
	for _, known := range Opcodes {
		if op != string(known) && strings.EqualFold(op, string(known)) {
			return NewProtocolError("unknown opcode "+strconv.Quote(op)+", did you mean "+string(known)+"?", nil)
		}
	}
	return nil
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{'0', 'x', digits[b>>4], digits[b&0x0f]})
}
