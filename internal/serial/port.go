// Package serial opens the physical serial link to the LED driver.
package serial

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
	"time"

	"go.bug.st/serial"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

// Default link parameters.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 500 * time.Millisecond
)

// Config describes how to open the link.
type Config struct {
	Path        string
	BaudRate    int
	ReadTimeout time.Duration
}

// Port is an open serial link. It implements protocol.Stream.
type Port struct {
	protocol.Stream
	port serial.Port
	path string
}

// Open opens the serial device at cfg.Path in 8N1 mode.
func Open(cfg Config) (*Port, error) {
	if cfg.Path == "" {
		return nil, protocol.NewStreamError("no serial port configured", nil)
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	port, err := serial.Open(cfg.Path, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, protocol.NewStreamError(fmt.Sprintf("open %s: %s", cfg.Path, describe(err)), err)
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, protocol.NewStreamError("set read timeout", err)
	}

	// Drop anything the chip printed before we connected.
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, protocol.NewStreamError("reset input buffer", err)
	}

	return &Port{
		Stream: protocol.NewLineStream(port),
		port:   port,
		path:   cfg.Path,
	}, nil
}

// Path returns the device path the port was opened on.
func (p *Port) Path() string {
	return p.path
}

// Close releases the serial device.
func (p *Port) Close() error {
	return p.port.Close()
}

// IsDisconnect reports whether err means the device went away: the port
// was closed, or the tty node vanished (unplugged USB adapter).
func IsDisconnect(err error) bool {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
			return true
		default:
			return false
		}
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, syscall.ENXIO) ||
		errors.Is(err, syscall.ENODEV)
}

func describe(err error) string {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return err.Error()
	}
	switch portErr.Code() {
	case serial.PortNotFound:
		return "port not found"
	case serial.PortBusy:
		return "port busy"
	case serial.PermissionDenied:
		return "permission denied"
	case serial.InvalidSpeed:
		return "unsupported baud rate"
	default:
		return portErr.EncodedErrorString()
	}
}
